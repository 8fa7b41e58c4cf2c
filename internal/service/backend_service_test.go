package service

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/fadilmartias/converge/internal/dto"
	"github.com/fadilmartias/converge/internal/metrics"
	"github.com/fadilmartias/converge/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, initial model.Session, h http.HandlerFunc) (*BackendService, *SessionService, *countingServer) {
	t.Helper()
	srv := newCountingServer(t, h)
	sess, _ := newSession(t, initial)
	return NewBackendService(testBackendConfig(srv.URL), sess, nil), sess, srv
}

func TestLogin_ThenProfileWithoutIDKeepsUserID(t *testing.T) {
	ctx := context.Background()
	svc, sess, _ := newBackend(t, model.Session{}, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var body dto.LoginRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "a@b.edu", body.Email)
			assert.Empty(t, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, `{"token":"T1","id":42}`)
		case "/api/profile":
			assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, `{"email":"a@b.edu"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	got, err := svc.Login(ctx, "a@b.edu", "secret")
	require.NoError(t, err)
	assert.Equal(t, model.Session{Token: "T1", UserID: "42"}, got)

	p, err := svc.GetOwnProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@b.edu", p.Email)
	assert.Equal(t, "42", sess.UserID())
}

func TestLogin_Failure(t *testing.T) {
	svc, sess, _ := newBackend(t, model.Session{}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Bad email or password"))
	})

	_, err := svc.Login(context.Background(), "a@b.edu", "nope")
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusUnauthorized, ae.Status)
	assert.Equal(t, "Bad email or password", ae.Message)
	assert.False(t, sess.IsAuthenticated())
}

func TestLogin_NoTokenInResponse(t *testing.T) {
	svc, _, _ := newBackend(t, model.Session{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":1}`)
	})
	_, err := svc.Login(context.Background(), "a@b.edu", "x")
	var ae *AuthError
	assert.ErrorAs(t, err, &ae)
}

func TestRegister(t *testing.T) {
	svc, sess, _ := newBackend(t, model.Session{}, func(w http.ResponseWriter, r *http.Request) {
		var body dto.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "UEs=", body.ResumePdf)
		assert.Equal(t, "resume text", body.ResumeText)
		writeJSON(w, http.StatusCreated, `{"token":"T2","userId":"u-9"}`)
	})

	got, err := svc.Register(context.Background(), dto.RegisterRequest{
		FullName: "Ada", Email: "a@u.edu", Password: "pw", ResumeText: "resume text", ResumePdf: "UEs=",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-9", got.UserID)
	assert.True(t, sess.IsAuthenticated())
}

func TestRegister_Rejected(t *testing.T) {
	svc, _, _ := newBackend(t, model.Session{}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	_, err := svc.Register(context.Background(), dto.RegisterRequest{Email: "a@u.edu"})
	var re *RegistrationError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Registration failed", re.Message)
}

func TestGetOwnProfile_NoSessionIssuesNoRequest(t *testing.T) {
	svc, _, srv := newBackend(t, model.Session{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	_, err := svc.GetOwnProfile(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, srv.hits.Load())
}

func TestGetOwnProfile_401ExpiresSession(t *testing.T) {
	ctx := context.Background()
	svc, sess, srv := newBackend(t, model.Session{Token: "T", UserID: "1"}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := svc.GetOwnProfile(ctx)
	var se *SessionExpiredError
	require.ErrorAs(t, err, &se)
	assert.False(t, sess.IsAuthenticated())

	_, err = svc.ListMyProjects(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.EqualValues(t, 1, srv.hits.Load())
}

func TestGetOwnProfile_StatusMapping(t *testing.T) {
	t.Run("403", func(t *testing.T) {
		svc, sess, _ := newBackend(t, model.Session{Token: "T"}, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		_, err := svc.GetOwnProfile(context.Background())
		var ad *AccessDeniedError
		require.ErrorAs(t, err, &ad)
		assert.True(t, sess.IsAuthenticated())
	})

	t.Run("500 with body", func(t *testing.T) {
		svc, _, _ := newBackend(t, model.Session{Token: "T"}, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("db down"))
		})
		_, err := svc.GetOwnProfile(context.Background())
		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "db down", fe.Message)
	})

	t.Run("500 without body", func(t *testing.T) {
		svc, _, _ := newBackend(t, model.Session{Token: "T"}, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := svc.GetOwnProfile(context.Background())
		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "Failed to fetch profile. Status: 502", fe.Message)
	})
}

func TestGetOwnProfile_HealsMissingUserID(t *testing.T) {
	svc, sess, _ := newBackend(t, model.Session{Token: "T"}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"resume_id":"r-5","email":"a@u.edu"}`)
	})
	_, err := svc.GetOwnProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r-5", sess.UserID())
}

func TestNetworkError(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	url := srv.URL
	srv.Close()

	sess, _ := newSession(t, model.Session{Token: "T"})
	svc := NewBackendService(testBackendConfig(url), sess, nil)

	_, err := svc.GetOwnProfile(context.Background())
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "get own profile", ne.Op)
	assert.True(t, sess.IsAuthenticated())
}

func TestCreateProject_SendsNormalizedPayload(t *testing.T) {
	svc, _, _ := newBackend(t, model.Session{Token: "T"}, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/projects", r.URL.Path)
		var body dto.CreateProjectPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"Go", "SQL"}, body.RequiredSkills)
		assert.Equal(t, "PRIVATE", body.Visibility)
		assert.Equal(t, "OPEN_SOURCE", body.Type)
		writeJSON(w, http.StatusOK, `{"id":31,"title":"Tool","type":"OPEN_SOURCE","requiredSkills":["Go","SQL"]}`)
	})

	o, err := svc.CreateProject(context.Background(), dto.ProjectForm{
		Title: "Tool", Type: "open_source", Skills: " Go, SQL,Go",
	})
	require.NoError(t, err)
	assert.Equal(t, "31", o.ID)
	assert.Equal(t, model.TypeOpenSource, o.Type)
}

func TestListAndGetProjects(t *testing.T) {
	svc, _, _ := newBackend(t, model.Session{Token: "T"}, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/projects":
			writeJSON(w, http.StatusOK, `[{"id":1,"title":"Mine"}]`)
		case "/api/projects/explore":
			writeJSON(w, http.StatusOK, `[{"id":2},{"id":3}]`)
		case "/api/projects/2":
			writeJSON(w, http.StatusOK, `{"id":2,"status":"COMPLETED"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("no such project"))
		}
	})
	ctx := context.Background()

	mine, err := svc.ListMyProjects(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Mine", mine[0].Title)

	explore, err := svc.ExploreProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, explore, 2)

	p, err := svc.GetProject(ctx, "2")
	require.NoError(t, err)
	assert.True(t, p.IsCompleted())

	_, err = svc.GetProject(ctx, "404")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.Status)
	assert.Equal(t, "no such project", fe.Message)
}

func TestInviteTeammate(t *testing.T) {
	var invited []string
	svc, _, srv := newBackend(t, model.Session{Token: "T"}, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/profile/c1":
			writeJSON(w, http.StatusOK, `{"id":"c1","email":"c1@u.edu"}`)
		case "/api/profile/c2":
			writeJSON(w, http.StatusOK, `{"id":"c2"}`)
		case "/api/projects/p1/teammates":
			var body dto.InviteTeammatePayload
			_ = json.NewDecoder(r.Body).Decode(&body)
			invited = append(invited, body.Email)
			writeJSON(w, http.StatusOK, `{}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	res, err := svc.InviteTeammate(ctx, "p1", "c1")
	require.NoError(t, err)
	assert.Equal(t, InviteResult{Sent: true, Email: "c1@u.edu"}, res)
	assert.Equal(t, []string{"c1@u.edu"}, invited)

	before := srv.hits.Load()
	res, err = svc.InviteTeammate(ctx, "p1", "c2")
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Equal(t, before+1, srv.hits.Load(), "only the profile lookup is issued")
	assert.Len(t, invited, 1)
}

func TestGetTeammateRequests_DegradesToEmpty(t *testing.T) {
	svc, sess, _ := newBackend(t, model.Session{Token: "T"}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	reqs, err := svc.GetTeammateRequests(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, reqs)
	assert.Empty(t, reqs)
	assert.True(t, sess.IsAuthenticated())
}

func TestGetTeammateRequests_SkipsItemsWithoutID(t *testing.T) {
	svc, _, _ := newBackend(t, model.Session{Token: "T"}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"requestId":1,"projectTitle":"A"},{"projectTitle":"B"}]`)
	})
	reqs, err := svc.GetTeammateRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "1", reqs[0].RequestID)
}

func TestGetTeammateRequests_RequiresSession(t *testing.T) {
	svc, _, srv := newBackend(t, model.Session{}, func(w http.ResponseWriter, r *http.Request) {})
	_, err := svc.GetTeammateRequests(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, srv.hits.Load())
}

func TestAcceptAndComplete(t *testing.T) {
	var paths []string
	svc, _, _ := newBackend(t, model.Session{Token: "T"}, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if r.URL.Path == "/api/projects/bad/complete" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()

	require.NoError(t, svc.AcceptTeammateRequest(ctx, "r1"))
	require.NoError(t, svc.CompleteProject(ctx, "p1"))
	err := svc.CompleteProject(ctx, "bad")
	var fe *FetchError
	assert.ErrorAs(t, err, &fe)

	assert.Equal(t, []string{
		"POST /api/projects/teammates/requests/r1/accept",
		"POST /api/projects/p1/complete",
		"POST /api/projects/bad/complete",
	}, paths)
}

func TestFetchOperations_401ExpiresSession(t *testing.T) {
	ctx := context.Background()
	ops := map[string]func(*BackendService) error{
		"profile by id": func(s *BackendService) error { _, err := s.GetProfileByID(ctx, "u9"); return err },
		"accept":        func(s *BackendService) error { return s.AcceptTeammateRequest(ctx, "r1") },
		"complete":      func(s *BackendService) error { return s.CompleteProject(ctx, "p1") },
	}
	for name, call := range ops {
		t.Run(name, func(t *testing.T) {
			svc, sess, srv := newBackend(t, model.Session{Token: "T", UserID: "u1"}, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			})

			err := call(svc)
			var expired *SessionExpiredError
			require.ErrorAs(t, err, &expired)
			assert.False(t, sess.IsAuthenticated())

			assert.ErrorIs(t, call(svc), ErrNotAuthenticated)
			assert.EqualValues(t, 1, srv.hits.Load())
		})
	}
}

func TestDownloadResume(t *testing.T) {
	svc, _, _ := newBackend(t, model.Session{Token: "T"}, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/resume/download":
			_, _ = w.Write([]byte("%PDF-own"))
		case "/api/resume/download/u7":
			_, _ = w.Write([]byte("%PDF-other"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()
	dir := t.TempDir()

	path, err := svc.DownloadOwnResume(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "my_resume.pdf"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-own", string(data))

	path, err = svc.DownloadResumeOf(ctx, "u7", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "resume_u7.pdf"), path)

	_, err = svc.DownloadResumeOf(ctx, "missing", dir)
	var de *DownloadError
	assert.ErrorAs(t, err, &de)

	_, err = svc.DownloadResumeOf(ctx, "../", dir)
	assert.True(t, IsValidation(err))
}

func TestUploadResume(t *testing.T) {
	svc, _, _ := newBackend(t, model.Session{Token: "T"}, func(w http.ResponseWriter, r *http.Request) {
		var body dto.UploadResumePayload
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.ResumePdf == "bad" {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()

	require.NoError(t, svc.UploadResume(ctx, "UEs="))

	err := svc.UploadResume(ctx, "bad")
	var ue *UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Failed to upload resume.", ue.Message)

	assert.True(t, IsValidation(svc.UploadResume(ctx, "")))
}

func TestLogout(t *testing.T) {
	svc, sess, srv := newBackend(t, model.Session{Token: "T", UserID: "1"}, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, svc.Logout(context.Background()))
	assert.False(t, sess.IsAuthenticated())
	assert.Zero(t, srv.hits.Load())
}

func TestBackendCallsAreMeasured(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})
	m := metrics.New()
	sess, _ := newSession(t, model.Session{Token: "T"})
	svc := NewBackendService(testBackendConfig(srv.URL), sess, m)

	_, err := svc.ListMyProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendRequestsTotal.WithLabelValues("primary", "list my projects", "200")))
}
