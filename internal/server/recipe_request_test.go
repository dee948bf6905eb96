package server

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"pantry/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idValues(ids ...uint) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, strconv.FormatUint(uint64(id), 10))
	}
	return out
}

func TestCreateRecipe_FormEncoded(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signup(t, "user@example.com")
	vegan := env.createNamed(t, token, "tags", "Vegan")
	dessert := env.createNamed(t, token, "tags", "Dessert")

	resp := env.form(t, http.MethodPost, "/recipe/recipes/", token, url.Values{
		"title":        {"Cheesecake"},
		"time_minutes": {"30"},
		"price":        {"5.00"},
		"tags":         idValues(vegan.ID, dessert.ID),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[RecipeResponse](t, resp)
	assert.Equal(t, "Cheesecake", created.Title)
	assert.Equal(t, 30, created.TimeMinutes)
	assert.Equal(t, "5.00", created.Price)
	assert.ElementsMatch(t, []uint{vegan.ID, dessert.ID}, created.Tags)
	assert.Empty(t, created.Ingredients)
}

func TestCreateRecipe_MultipartFields(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signup(t, "user@example.com")
	salt := env.createNamed(t, token, "ingredients", "Salt")

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range map[string]string{"title": "Chips", "time_minutes": "12", "price": "2.50"} {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.WriteField("ingredients", strconv.FormatUint(uint64(salt.ID), 10)))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/recipe/recipes/", body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp := env.do(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[RecipeResponse](t, resp)
	assert.Equal(t, 12, created.TimeMinutes)
	assert.Equal(t, []uint{salt.ID}, created.Ingredients)
}

func TestPatchRecipe_FormEncoded(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signup(t, "user@example.com")
	tag := env.createNamed(t, token, "tags", "Quick")
	created := env.createRecipe(t, token, map[string]any{"tags": []uint{tag.ID}})
	path := fmt.Sprintf("/recipe/recipes/%d/", created.ID)

	resp := env.form(t, http.MethodPatch, path, token, url.Values{"title": {"Renamed"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[RecipeDetailResponse](t, resp)
	assert.Equal(t, "Renamed", detail.Title)
	assert.Equal(t, 22, detail.TimeMinutes)
	assert.Equal(t, []NamedResponse{tag}, detail.Tags)

	// A single blank value submits an empty list.
	resp = env.form(t, http.MethodPatch, path, token, url.Values{"tags": {""}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[RecipeDetailResponse](t, resp).Tags)
}

func TestRecipeRequest_FieldErrors(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signup(t, "user@example.com")
	base := func(extra string) string {
		return `{"title": "X", "time_minutes": 5, "price": "1.00"` + extra + `}`
	}

	tests := []struct {
		name  string
		body  string
		field string
		msg   string
	}{
		{"null tags", base(`, "tags": null`), "tags", msgNotNull},
		{"null ingredients", base(`, "ingredients": null`), "ingredients", msgNotNull},
		{"null title", `{"title": null, "time_minutes": 5, "price": "1.00"}`, "title", msgNotNull},
		{"fractional time", `{"title": "X", "time_minutes": 1.5, "price": "1.00"}`, "time_minutes", msgInvalidInt},
		{"text time", `{"title": "X", "time_minutes": "soon", "price": "1.00"}`, "time_minutes", msgInvalidInt},
		{"text price", `{"title": "X", "time_minutes": 5, "price": "cheap"}`, "price", msgInvalidNum},
		{"tags not a list", base(`, "tags": 5`), "tags", msgExpectedList},
		{"numeric title", `{"title": 7, "time_minutes": 5, "price": "1.00"}`, "title", msgInvalidStr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/recipe/recipes/", strings.NewReader(tt.body))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
			resp := env.do(t, req)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			body := decode[models.ErrorResponse](t, resp)
			assert.Equal(t, []string{tt.msg}, body.Fields[tt.field])
		})
	}

	resp := env.form(t, http.MethodPost, "/recipe/recipes/", token, url.Values{
		"title": {"X"}, "time_minutes": {"1.5"}, "price": {"1.00"}, "tags": {"abc"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	fields := decode[models.ErrorResponse](t, resp).Fields
	assert.Equal(t, []string{msgInvalidInt}, fields["time_minutes"])
	assert.Contains(t, fields, "tags")

	var count int64
	require.NoError(t, env.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecipeRequest_MalformedBody(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signup(t, "user@example.com")

	for _, body := range []string{"{", "[]", "null", ""} {
		req := httptest.NewRequest(http.MethodPost, "/recipe/recipes/", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp := env.do(t, req)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, body)

		errBody := decode[models.ErrorResponse](t, resp)
		assert.Equal(t, "Invalid request body", errBody.Error, body)
		assert.Empty(t, errBody.Fields, body)
	}
}

func TestParseRecipeJSON_QuotedScalars(t *testing.T) {
	req, err := parseRecipeJSON([]byte(`{"time_minutes": "30", "price": 4.5, "tags": ["3", 4], "link": ""}`))
	require.NoError(t, err)

	require.NotNil(t, req.TimeMinutes)
	assert.Equal(t, 30, *req.TimeMinutes)
	require.NotNil(t, req.Price)
	assert.Equal(t, "4.50", req.Price.StringFixed(2))
	require.NotNil(t, req.Tags)
	assert.Equal(t, []uint{3, 4}, *req.Tags)
	require.NotNil(t, req.Link)
	assert.Empty(t, *req.Link)
	assert.Nil(t, req.Title)
	assert.Nil(t, req.Ingredients)
}
