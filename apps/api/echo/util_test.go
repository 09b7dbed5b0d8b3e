package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/Umairism/Teachers-Club/apps/api/echo"
	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/article"
	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/confession"
	"github.com/Umairism/Teachers-Club/core/moderation"
	"github.com/Umairism/Teachers-Club/core/reaction"
	"github.com/Umairism/Teachers-Club/core/stats"
	"github.com/Umairism/Teachers-Club/core/user"
	emailsvc "github.com/Umairism/Teachers-Club/services/email"
	mediasvc "github.com/Umairism/Teachers-Club/services/media"
	"github.com/Umairism/Teachers-Club/storage/database/gormdb"
	"github.com/Umairism/Teachers-Club/tests"
)

var (
	errMissingToken    = httpErr{Error: "missing or malformed jwt"}
	errPermission      = httpErr{Error: "permission denied"}
	errNotFound        = httpErr{Error: "not found"}
	errDeactivated     = httpErr{Error: "account deactivated"}
	errBadCredentials  = httpErr{Error: "invalid credentials"}
	errTooManyRequests = httpErr{Error: "too many requests, please wait"}
)

type testApp struct {
	app     echoapi.Server
	conf    *core.Config
	usrRepo user.Repository
	users   testutil.Users
	tokens  map[string]string // role -> token
}

func setup(t *testing.T, configure ...func(*core.Config)) testApp {
	t.Helper()
	conf := core.NewTestConfig()
	conf.Media.Dir = t.TempDir()
	for _, fn := range configure {
		fn(conf)
	}

	// set up DB & repos
	db := testutil.OpenDB(t)
	usrRepo := gormdb.NewUserRepository(db)

	// set up services
	logger := testutil.NewLogger()
	validate, translator := testutil.NewValidator()
	modSvc := moderation.NewService(gormdb.NewModerationRepository(db), logger)
	commentSvc := comment.NewService(gormdb.NewCommentRepository(db), modSvc, logger)
	storage, err := mediasvc.NewStorage(conf.Media)
	require.NoError(t, err)

	deps := &echoapi.Deps{
		Conf:          conf,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		UserSvc:       user.NewService(usrRepo, modSvc, emailsvc.NewConsoleServiceMock(conf, logger), conf, logger),
		ArticleSvc:    article.NewService(gormdb.NewArticleRepository(db), commentSvc, modSvc, logger),
		ConfessionSvc: confession.NewService(gormdb.NewConfessionRepository(db), commentSvc, modSvc, logger),
		CommentSvc:    commentSvc,
		ReactionSvc:   reaction.NewService(gormdb.NewReactionRepository(db), logger),
		ModerationSvc: modSvc,
		MediaSvc:      mediasvc.NewService(storage, conf.Media.MaxUploadSize),
	}
	deps.StatsSvc = stats.NewService(
		usrRepo,
		gormdb.NewArticleRepository(db),
		gormdb.NewConfessionRepository(db),
		gormdb.NewCommentRepository(db),
		logger,
	)

	ta := testApp{
		app:     echoapi.NewServer("", nil, deps),
		conf:    conf,
		usrRepo: usrRepo,
		users:   testutil.CreateUsers(t, usrRepo),
	}
	ta.tokens = map[string]string{
		user.RoleAdmin:     getToken(t, conf, ta.users.Admin),
		user.RoleModerator: getToken(t, conf, ta.users.Moderator),
		user.RoleTeacher:   getToken(t, conf, ta.users.Teacher),
		user.RoleStudent:   getToken(t, conf, ta.users.Student),
	}
	return ta
}

// do sends a JSON request and returns the recorded response.
func (ta testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	ta.app.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr, conf), conf.Server.SecretKey)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// decodeObj decodes a JSON object response.
func decodeObj(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var obj map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &obj); err != nil {
		t.Fatalf("decodeObj() failed: %v; body %s", err, rec.Body.String())
	}
	return obj
}

// decodeList decodes a JSON array response.
func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	var objs []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &objs); err != nil {
		t.Fatalf("decodeList() failed: %v; body %s", err, rec.Body.String())
	}
	return objs
}

// pluck collects a field of decoded objects.
func pluck(objs []map[string]interface{}, field string) []interface{} {
	vals := make([]interface{}, len(objs))
	for i, obj := range objs {
		vals[i] = obj[field]
	}
	return vals
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, ta testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := ta.do(method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func assertCode(t *testing.T, want int, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}
