package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAppServesRouteTable(t *testing.T) {
	db, err := openDatabase("file:main_route_test?mode=memory&cache=shared")
	assert.NoError(t, err)

	app, err := buildApp(db, "test_jwt_secret", nil)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Message   string `json:"message"`
		Endpoints []struct {
			Method string `json:"method"`
			Path   string `json:"path"`
		} `json:"endpoints"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()

	assert.Equal(t, "Welcome to the Happy Thoughts API!", body.Message)

	listed := make(map[string]bool)
	for _, e := range body.Endpoints {
		listed[fmt.Sprintf("%s %s", e.Method, strings.TrimSuffix(e.Path, "/"))] = true
	}
	for _, want := range []string{
		"POST /signup",
		"POST /login",
		"GET /thoughts",
		"GET /thoughts/:id",
		"POST /thoughts",
		"PATCH /thoughts/:id",
		"DELETE /thoughts/:id",
		"POST /thoughts/:id/like",
	} {
		assert.True(t, listed[want], "route table should list %q", want)
	}
}

func TestOpenDatabaseDriverSelection(t *testing.T) {
	// A plain file path opens through the sqlite driver.
	db, err := openDatabase("file:driver_selection_test?mode=memory&cache=shared")
	assert.NoError(t, err)
	assert.NotNil(t, db)
}
