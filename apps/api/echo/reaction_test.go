package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Umairism/Teachers-Club/core/user"
)

func Test_reactionApi(t *testing.T) {
	ta := setup(t)
	articleID := createArticle(t, ta, `{"title": "Fractions", "content": "Halves."}`)
	path := "/v1/reactions/article/" + articleID
	heart := []byte(`{"type": "heart"}`)

	runHTTPTests(t, ta, []httpTest{
		{name: "auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "empty", path: path, token: ta.tokens[user.RoleStudent], wantCode: http.StatusOK,
			wantData: []byte(`{"counts": {"thumbs_up": 0, "heart": 0, "insightful": 0, "boring": 0}, "total": 0, "user_reaction": null}`),
		},
		{name: "bad target type", path: "/v1/reactions/poll/" + articleID, token: ta.tokens[user.RoleStudent], wantCode: http.StatusBadRequest, wantData: []byte(`{"target_type": "invalid reaction target"}`)},
		{name: "unknown target", method: http.MethodPost, path: "/v1/reactions/article/nope", token: ta.tokens[user.RoleStudent], body: heart, wantCode: http.StatusNotFound, wantData: []byte(`{"error": "reaction target not found"}`)},
		{name: "bad type", method: http.MethodPost, path: path, token: ta.tokens[user.RoleStudent], body: []byte(`{"type": "angry"}`), wantCode: http.StatusBadRequest},
		{name: "type required", method: http.MethodPost, path: path, token: ta.tokens[user.RoleStudent], body: []byte(`{}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"type": "this field is required"}`)},
	})

	steps := []struct {
		name      string
		role      string
		body      []byte
		wantHeart float64
		wantTotal float64
		wantMine  interface{}
	}{
		{name: "add", role: user.RoleStudent, body: heart, wantHeart: 1, wantTotal: 1, wantMine: "heart"},
		{name: "someone else", role: user.RoleTeacher, body: heart, wantHeart: 2, wantTotal: 2, wantMine: "heart"},
		{name: "switch", role: user.RoleStudent, body: []byte(`{"type": "insightful"}`), wantHeart: 1, wantTotal: 2, wantMine: "insightful"},
		{name: "remove", role: user.RoleTeacher, body: heart, wantHeart: 0, wantTotal: 1, wantMine: nil},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			rec := ta.do(http.MethodPost, path, ta.tokens[step.role], step.body)
			assertCode(t, http.StatusOK, rec)
			data := decodeObj(t, rec)
			assert.Equal(t, step.wantHeart, data["counts"].(map[string]interface{})["heart"])
			assert.Equal(t, step.wantTotal, data["total"])
			assert.Equal(t, step.wantMine, data["user_reaction"])
		})
	}

	// the summary is personal
	rec := ta.do(http.MethodGet, path, ta.tokens[user.RoleAdmin])
	assertCode(t, http.StatusOK, rec)
	data := decodeObj(t, rec)
	assert.Equal(t, float64(1), data["total"])
	assert.Nil(t, data["user_reaction"])
}
