package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/user"
)

func createConfession(t *testing.T, ta testApp, role, body string) string {
	t.Helper()
	rec := ta.do(http.MethodPost, "/v1/confessions", ta.tokens[role], []byte(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeObj(t, rec)["id"].(string)
}

func Test_confessionApi_create(t *testing.T) {
	ta := setup(t)
	body := []byte(`{"content": "I still count on my fingers.", "is_anonymous": true}`)

	runHTTPTests(t, ta, []httpTest{
		{name: "students cannot confess", method: http.MethodPost, path: "/v1/confessions", token: ta.tokens[user.RoleStudent], body: body, wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermission)},
		{name: "moderators cannot confess", method: http.MethodPost, path: "/v1/confessions", token: ta.tokens[user.RoleModerator], body: body, wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermission)},
		{
			name: "bad category", method: http.MethodPost, path: "/v1/confessions", token: ta.tokens[user.RoleTeacher],
			body: []byte(`{"content": "Hi", "category": "gossip"}`), wantCode: http.StatusBadRequest,
		},
	})

	rec := ta.do(http.MethodPost, "/v1/confessions", ta.tokens[user.RoleTeacher], body)
	assertCode(t, http.StatusCreated, rec)
	data := decodeObj(t, rec)
	assert.Equal(t, "general", data["category"])
	assert.Equal(t, true, data["is_anonymous"])
	assert.Equal(t, "Anonymous", data["author"].(map[string]interface{})["name"])
}

func Test_confessionApi_anonymity(t *testing.T) {
	ta := setup(t)
	anonID := createConfession(t, ta, user.RoleTeacher, `{"content": "I still count on my fingers.", "is_anonymous": true}`)
	signedID := createConfession(t, ta, user.RoleTeacher, `{"content": "I love Mondays.", "category": "personal"}`)

	tests := []struct {
		name       string
		id         string
		role       string
		wantAuthor string
		wantID     string
	}{
		{name: "anonymous to students", id: anonID, role: user.RoleStudent, wantAuthor: "Anonymous", wantID: ""},
		{name: "anonymous to the author", id: anonID, role: user.RoleTeacher, wantAuthor: "Anonymous", wantID: ta.users.Teacher.ID},
		{name: "anonymous to moderators", id: anonID, role: user.RoleModerator, wantAuthor: "Anonymous", wantID: ta.users.Teacher.ID},
		{name: "signed", id: signedID, role: user.RoleStudent, wantAuthor: "Ted", wantID: ta.users.Teacher.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ta.do(http.MethodGet, "/v1/confessions/"+tt.id, ta.tokens[tt.role])
			assertCode(t, http.StatusOK, rec)
			data := decodeObj(t, rec)
			assert.Equal(t, tt.wantAuthor, data["author"].(map[string]interface{})["name"])
			assert.Equal(t, tt.wantID, data["author_id"])
		})
	}

	// lists are masked the same way
	rec := ta.do(http.MethodGet, "/v1/confessions?category=general", ta.tokens[user.RoleStudent])
	assertCode(t, http.StatusOK, rec)
	list := decodeList(t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "", list[0]["author_id"])
}

func Test_confessionApi_authorFilter(t *testing.T) {
	ta := setup(t)
	createConfession(t, ta, user.RoleTeacher, `{"content": "I still count on my fingers.", "is_anonymous": true}`)
	createConfession(t, ta, user.RoleTeacher, `{"content": "I love Mondays."}`)
	path := "/v1/confessions?author_id=" + ta.users.Teacher.ID

	tests := []struct {
		role string
		want []string
	}{
		{role: user.RoleStudent, want: []string{"I love Mondays."}},
		{role: user.RoleTeacher, want: []string{"I love Mondays.", "I still count on my fingers."}},
		{role: user.RoleModerator, want: []string{"I love Mondays.", "I still count on my fingers."}},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			rec := ta.do(http.MethodGet, path, ta.tokens[tt.role])
			assertCode(t, http.StatusOK, rec)
			var contents []string
			for _, c := range decodeList(t, rec) {
				contents = append(contents, c["content"].(string))
			}
			assert.ElementsMatch(t, tt.want, contents)
		})
	}
}

func Test_confessionApi_update(t *testing.T) {
	ta := setup(t)
	id := createConfession(t, ta, user.RoleTeacher, `{"content": "I love Mondays."}`)
	path := "/v1/confessions/" + id

	assertCode(t, http.StatusForbidden, ta.do(http.MethodPut, path, ta.tokens[user.RoleStudent], []byte(`{"content": "Mine"}`)))
	assertCode(t, http.StatusNotFound, ta.do(http.MethodPut, "/v1/confessions/nope", ta.tokens[user.RoleTeacher], []byte(`{"content": "Mine"}`)))

	rec := ta.do(http.MethodPut, path, ta.tokens[user.RoleTeacher], []byte(`{"is_anonymous": true, "category": "career"}`))
	assertCode(t, http.StatusOK, rec)
	data := decodeObj(t, rec)
	assert.Equal(t, "career", data["category"])
	assert.Equal(t, "Anonymous", data["author"].(map[string]interface{})["name"])
}

func Test_confessionApi_like(t *testing.T) {
	ta := setup(t)
	id := createConfession(t, ta, user.RoleTeacher, `{"content": "I love Mondays."}`)

	rec := ta.do(http.MethodPost, "/v1/confessions/"+id+"/like", ta.tokens[user.RoleStudent])
	assertCode(t, http.StatusOK, rec)
	assert.Equal(t, float64(1), decodeObj(t, rec)["likes"])

	rec = ta.do(http.MethodDelete, "/v1/confessions/"+id+"/like", ta.tokens[user.RoleAdmin])
	assertCode(t, http.StatusOK, rec)
	assert.Equal(t, float64(1), decodeObj(t, rec)["likes"], "only the liker can take a like back")

	rec = ta.do(http.MethodDelete, "/v1/confessions/"+id+"/like", ta.tokens[user.RoleStudent])
	assertCode(t, http.StatusOK, rec)
	assert.Equal(t, float64(0), decodeObj(t, rec)["likes"])
}

func Test_confessionApi_comments(t *testing.T) {
	ta := setup(t)
	id := createConfession(t, ta, user.RoleTeacher, `{"content": "I love Mondays.", "is_anonymous": true}`)
	path := "/v1/confessions/" + id + "/comments"

	rec := ta.do(http.MethodPost, path, ta.tokens[user.RoleStudent], []byte(`{"content": "Me too"}`))
	assertCode(t, http.StatusCreated, rec)
	assert.Equal(t, "confession", decodeObj(t, rec)["target_type"])

	rec = ta.do(http.MethodGet, path, ta.tokens[user.RoleStudent])
	assertCode(t, http.StatusOK, rec)
	assert.Equal(t, []interface{}{"Me too"}, pluck(decodeList(t, rec), "content"))

	rec = ta.do(http.MethodGet, "/v1/confessions/"+id, ta.tokens[user.RoleStudent])
	assertCode(t, http.StatusOK, rec)
	assert.Len(t, decodeObj(t, rec)["comments"], 1)
}

func Test_confessionApi_destroy(t *testing.T) {
	ta := setup(t)
	id := createConfession(t, ta, user.RoleTeacher, `{"content": "I love Mondays."}`)
	path := "/v1/confessions/" + id

	runHTTPTests(t, ta, []httpTest{
		{name: "not the author", method: http.MethodDelete, path: path, token: ta.tokens[user.RoleStudent], wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermission)},
		{name: "unknown", method: http.MethodDelete, path: "/v1/confessions/nope", token: ta.tokens[user.RoleModerator], wantCode: http.StatusNotFound, wantData: []byte(`{"error": "confession not found"}`)},
		{name: "moderator", method: http.MethodDelete, path: path, token: ta.tokens[user.RoleModerator], wantCode: http.StatusNoContent},
		{name: "gone", path: path, token: ta.tokens[user.RoleModerator], wantCode: http.StatusNotFound},
	})

	rec := ta.do(http.MethodGet, "/v1/admin/logs?action="+core.ActionDeleteConfession, ta.tokens[user.RoleAdmin])
	assertCode(t, http.StatusOK, rec)
	logs := decodeList(t, rec)
	require.Len(t, logs, 1)
	assert.Equal(t, id, logs[0]["target_id"])
	assert.Equal(t, ta.users.Moderator.ID, logs[0]["admin_id"])

	// authors delete their own confessions without an audit entry
	id = createConfession(t, ta, user.RoleTeacher, `{"content": "Fridays too."}`)
	assertCode(t, http.StatusNoContent, ta.do(http.MethodDelete, "/v1/confessions/"+id, ta.tokens[user.RoleTeacher]))
	rec = ta.do(http.MethodGet, "/v1/admin/logs?action="+core.ActionDeleteConfession, ta.tokens[user.RoleAdmin])
	assert.Len(t, decodeList(t, rec), 1)
}
