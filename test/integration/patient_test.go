package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/patients/internal/core/domain"
	"github.com/vncsmyrnk/patients/internal/core/ports"
)

func (app *TestApp) login(t *testing.T, username, secret string) *http.Response {
	t.Helper()
	form := url.Values{}
	form.Add("username", username)
	form.Add("password", secret)

	resp, err := app.Client.PostForm(app.Server.URL+"/token", form)
	require.NoError(t, err)
	return resp
}

func (app *TestApp) get(t *testing.T, path, accessToken string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, app.Server.URL+path, nil)
	require.NoError(t, err)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	return resp
}

// TestPatientFlow covers the full path: provision user -> login -> read patient record.
func TestPatientFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	ctx := context.Background()

	doctor, err := app.UserSvc.Provision(ctx, ports.ProvisionUserInput{
		Username: "drhouse",
		Email:    "house@example.com",
		Password: "vicodin",
	})
	require.NoError(t, err)

	patient := &domain.Patient{
		Name:  "Jacek",
		Age:   50,
		Pesel: "74010112345",
		MedicalHistory: []domain.PatientHistory{
			{EventDate: time.Date(2019, 3, 4, 8, 30, 0, 0, time.UTC), EventDescription: "first visit", DoctorID: &doctor.ID},
		},
	}
	require.NoError(t, app.PatientRepo.Save(ctx, patient))

	// 1. Login
	resp := app.login(t, "drhouse", "vicodin")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tok domain.AccessToken
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tok))
	assert.Equal(t, "bearer", tok.TokenType)
	require.NotEmpty(t, tok.AccessToken)

	// 2. Read the patient
	resp = app.get(t, fmt.Sprintf("/patient/%d", patient.ID), tok.AccessToken)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Jacek", got["name"])
	assert.EqualValues(t, 50, got["age"])
	history, ok := got["medical_history"].([]any)
	require.True(t, ok)
	require.Len(t, history, 1)
	assert.Equal(t, "first visit", history[0].(map[string]any)["event_description"])

	// 3. Unknown patient
	resp = app.get(t, "/patient/424242", tok.AccessToken)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// 4. No token
	resp = app.get(t, fmt.Sprintf("/patient/%d", patient.ID), "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))

	// 5. Who am I
	resp = app.get(t, "/users/me", tok.AccessToken)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, "drhouse", me["username"])
	assert.NotContains(t, me, "password_hash")
}

func TestLoginFailuresAndRateLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, err := app.UserSvc.Provision(context.Background(), ports.ProvisionUserInput{Username: "alice", Password: "wonderland"})
	require.NoError(t, err)

	// Wrong password and unknown user produce the same response.
	var bodies []string
	for _, username := range []string{"alice", "mallory"} {
		resp := app.login(t, username, "nope")
		var sb bytes.Buffer
		_, err := sb.ReadFrom(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		bodies = append(bodies, sb.String())
	}
	assert.Equal(t, bodies[0], bodies[1])

	// alice already used one attempt; the counter lives in redis.
	for i := 1; i < loginRateLimit; i++ {
		resp := app.login(t, "alice", "wonderland")
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp := app.login(t, "alice", "wonderland")
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	n, err := app.Redis.Get(context.Background(), "patients-rate:login:alice").Int()
	require.NoError(t, err)
	assert.Equal(t, loginRateLimit, n)
}
