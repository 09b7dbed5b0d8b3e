package echoapi_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/user"
)

// createArticle creates an article as the teacher and returns its ID.
func createArticle(t *testing.T, ta testApp, body string) string {
	t.Helper()
	rec := ta.do(http.MethodPost, "/v1/articles", ta.tokens[user.RoleTeacher], []byte(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeObj(t, rec)["id"].(string)
}

func Test_articleApi_create(t *testing.T) {
	ta := setup(t)
	body := []byte(`{"title": " Fractions ", "content": "Halves and quarters.", "tags": ["maths", " maths", " "]}`)

	runHTTPTests(t, ta, []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/v1/articles", body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "students cannot write", method: http.MethodPost, path: "/v1/articles", token: ta.tokens[user.RoleStudent], body: body, wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermission)},
		{name: "moderators cannot write", method: http.MethodPost, path: "/v1/articles", token: ta.tokens[user.RoleModerator], body: body, wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermission)},
		{
			name: "required fields", method: http.MethodPost, path: "/v1/articles", token: ta.tokens[user.RoleTeacher], body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"title": "this field is required", "content": "this field is required"}),
		},
	})

	rec := ta.do(http.MethodPost, "/v1/articles", ta.tokens[user.RoleTeacher], body)
	assertCode(t, http.StatusCreated, rec)
	data := decodeObj(t, rec)
	assert.Equal(t, "Fractions", data["title"])
	assert.Equal(t, "draft", data["status"])
	assert.Equal(t, "Halves and quarters.", data["excerpt"])
	assert.Equal(t, []interface{}{"maths"}, data["tags"])
	assert.Nil(t, data["published_at"])
	assert.Equal(t, ta.users.Teacher.ID, data["author_id"])
	assert.Equal(t, "Ted", data["author"].(map[string]interface{})["name"])
}

func Test_articleApi_query(t *testing.T) {
	ta := setup(t)
	createArticle(t, ta, `{"title": "Fractions", "content": "Halves.", "category": "maths", "status": "published"}`)
	createArticle(t, ta, `{"title": "Poems", "content": "Verses.", "category": "english"}`)

	tests := []struct {
		name string
		path string
		want []interface{}
	}{
		{name: "all", path: "/v1/articles?ordering=title", want: []interface{}{"Fractions", "Poems"}},
		{name: "status", path: "/v1/articles?status=published", want: []interface{}{"Fractions"}},
		{name: "category", path: "/v1/articles?category=english", want: []interface{}{"Poems"}},
		{name: "search", path: "/v1/articles?search=verse", want: []interface{}{"Poems"}},
		{name: "no match", path: "/v1/articles?author_id=nope", want: []interface{}{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ta.do(http.MethodGet, tt.path, ta.tokens[user.RoleStudent])
			assertCode(t, http.StatusOK, rec)
			assert.Equal(t, tt.want, pluck(decodeList(t, rec), "title"))
		})
	}
}

func Test_articleApi_retrieve(t *testing.T) {
	ta := setup(t)
	id := createArticle(t, ta, `{"title": "Fractions", "content": "Halves."}`)

	for _, want := range []float64{1, 2} {
		rec := ta.do(http.MethodGet, "/v1/articles/"+id, ta.tokens[user.RoleStudent])
		assertCode(t, http.StatusOK, rec)
		assert.Equal(t, want, decodeObj(t, rec)["views"])
	}

	rec := ta.do(http.MethodGet, "/v1/articles/nope", ta.tokens[user.RoleStudent])
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: []byte(`{"error": "article not found"}`)}, rec)
}

func Test_articleApi_update(t *testing.T) {
	ta := setup(t)
	id := createArticle(t, ta, `{"title": "Fractions", "content": "Halves."}`)
	path := "/v1/articles/" + id

	runHTTPTests(t, ta, []httpTest{
		{name: "not the author", method: http.MethodPut, path: path, token: ta.tokens[user.RoleStudent], body: []byte(`{"title": "Mine"}`), wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermission)},
		{name: "bad status", method: http.MethodPut, path: path, token: ta.tokens[user.RoleTeacher], body: []byte(`{"status": "lost"}`), wantCode: http.StatusBadRequest},
		{name: "unknown", method: http.MethodPut, path: "/v1/articles/nope", token: ta.tokens[user.RoleTeacher], body: []byte(`{"title": "T"}`), wantCode: http.StatusNotFound},
	})

	rec := ta.do(http.MethodPut, path, ta.tokens[user.RoleTeacher], []byte(`{"status": "published", "content": "Halves and thirds."}`))
	assertCode(t, http.StatusOK, rec)
	data := decodeObj(t, rec)
	assert.Equal(t, "published", data["status"])
	assert.NotNil(t, data["published_at"])
	assert.Equal(t, "Halves and thirds.", data["excerpt"])

	// admin edits are audited
	rec = ta.do(http.MethodPut, path, ta.tokens[user.RoleAdmin], []byte(`{"is_featured": true}`))
	assertCode(t, http.StatusOK, rec)
	assert.Equal(t, true, decodeObj(t, rec)["is_featured"])

	rec = ta.do(http.MethodGet, "/v1/admin/logs?action="+core.ActionUpdateArticle, ta.tokens[user.RoleAdmin])
	assertCode(t, http.StatusOK, rec)
	assert.Equal(t, []interface{}{id}, pluck(decodeList(t, rec), "target_id"))
}

func Test_articleApi_like(t *testing.T) {
	ta := setup(t)
	id := createArticle(t, ta, `{"title": "Fractions", "content": "Halves."}`)
	path := "/v1/articles/" + id + "/like"

	steps := []struct {
		method string
		role   string
		want   float64
	}{
		{http.MethodPost, user.RoleStudent, 1},
		{http.MethodPost, user.RoleStudent, 1},
		{http.MethodPost, user.RoleTeacher, 2},
		{http.MethodDelete, user.RoleAdmin, 2},
		{http.MethodDelete, user.RoleStudent, 1},
		{http.MethodDelete, user.RoleStudent, 1},
	}
	for _, step := range steps {
		rec := ta.do(step.method, path, ta.tokens[step.role])
		assertCode(t, http.StatusOK, rec)
		assert.Equal(t, step.want, decodeObj(t, rec)["likes"])
	}

	assertCode(t, http.StatusNotFound, ta.do(http.MethodPost, "/v1/articles/nope/like", ta.tokens[user.RoleStudent]))
}

func Test_articleApi_moderate(t *testing.T) {
	ta := setup(t)
	id := createArticle(t, ta, `{"title": "Fractions", "content": "Halves."}`)
	path := "/v1/articles/" + id + "/moderate"

	assertCode(t, http.StatusForbidden, ta.do(http.MethodPost, path, ta.tokens[user.RoleTeacher]))

	rec := ta.do(http.MethodPost, path, ta.tokens[user.RoleModerator])
	assertCode(t, http.StatusOK, rec)
	data := decodeObj(t, rec)
	assert.Equal(t, true, data["is_moderated"])
	assert.Equal(t, ta.users.Moderator.ID, data["moderated_by"])
}

func Test_articleApi_comments(t *testing.T) {
	ta := setup(t)
	id := createArticle(t, ta, `{"title": "Fractions", "content": "Halves."}`)
	path := "/v1/articles/" + id + "/comments"

	rec := ta.do(http.MethodGet, path, ta.tokens[user.RoleStudent])
	assertCode(t, http.StatusOK, rec)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = ta.do(http.MethodPost, path, ta.tokens[user.RoleStudent], []byte(`{"content": "Nice!"}`))
	assertCode(t, http.StatusCreated, rec)
	parent := decodeObj(t, rec)
	assert.Equal(t, "article", parent["target_type"])
	assert.Equal(t, "Sam", parent["author"].(map[string]interface{})["name"])

	rec = ta.do(http.MethodPost, path, ta.tokens[user.RoleTeacher], marchallObj(t, map[string]string{"content": "Thanks", "parent_id": parent["id"].(string)}))
	assertCode(t, http.StatusCreated, rec)

	runHTTPTests(t, ta, []httpTest{
		{name: "empty content", method: http.MethodPost, path: path, token: ta.tokens[user.RoleStudent], body: []byte(`{"content": "  "}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"content": "this field is required"}`)},
		{name: "bad parent", method: http.MethodPost, path: path, token: ta.tokens[user.RoleStudent], body: []byte(`{"content": "Hi", "parent_id": "nope"}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"parent_id": "parent comment does not belong to this target"}`)},
		{name: "unknown article", method: http.MethodPost, path: "/v1/articles/nope/comments", token: ta.tokens[user.RoleStudent], body: []byte(`{"content": "Hi"}`), wantCode: http.StatusNotFound, wantData: []byte(`{"error": "comment target not found"}`)},
	})

	rec = ta.do(http.MethodGet, path, ta.tokens[user.RoleStudent])
	assertCode(t, http.StatusOK, rec)
	thread := decodeList(t, rec)
	require.Len(t, thread, 1)
	replies := thread[0]["replies"].([]interface{})
	require.Len(t, replies, 1)
	assert.Equal(t, "Thanks", replies[0].(map[string]interface{})["content"])

	// the detail view embeds the thread
	rec = ta.do(http.MethodGet, "/v1/articles/"+id, ta.tokens[user.RoleStudent])
	assertCode(t, http.StatusOK, rec)
	assert.Len(t, decodeObj(t, rec)["comments"], 1)
}

func Test_articleApi_destroy(t *testing.T) {
	ta := setup(t)
	id := createArticle(t, ta, `{"title": "Fractions", "content": "Halves."}`)
	path := "/v1/articles/" + id

	runHTTPTests(t, ta, []httpTest{
		{name: "not the author", method: http.MethodDelete, path: path, token: ta.tokens[user.RoleStudent], wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermission)},
		{name: "unknown", method: http.MethodDelete, path: "/v1/articles/nope", token: ta.tokens[user.RoleTeacher], wantCode: http.StatusNotFound, wantData: []byte(`{"error": "article not found"}`)},
		{name: "author", method: http.MethodDelete, path: path, token: ta.tokens[user.RoleTeacher], wantCode: http.StatusNoContent},
		{name: "gone", method: http.MethodGet, path: path, token: ta.tokens[user.RoleTeacher], wantCode: http.StatusNotFound},
	})

	// only authors and admins delete articles; admin deletions are audited
	id = createArticle(t, ta, `{"title": "Poems", "content": "Verses."}`)
	assertCode(t, http.StatusForbidden, ta.do(http.MethodDelete, "/v1/articles/"+id, ta.tokens[user.RoleModerator]))
	assertCode(t, http.StatusNoContent, ta.do(http.MethodDelete, "/v1/articles/"+id, ta.tokens[user.RoleAdmin]))

	rec := ta.do(http.MethodGet, "/v1/admin/logs?action="+core.ActionDeleteArticle, ta.tokens[user.RoleAdmin])
	assertCode(t, http.StatusOK, rec)
	assert.Equal(t, []interface{}{id}, pluck(decodeList(t, rec), "target_id"))
}
