package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pantry/internal/models"
	"pantry/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const (
	msgNotNull      = "This field may not be null."
	msgInvalidInt   = "A valid integer is required."
	msgInvalidNum   = "A valid number is required."
	msgInvalidStr   = "Not a valid string."
	msgExpectedList = "Expected a list of items."
)

var errMalformedBody = errors.New("malformed request body")

// recipeRequest documents the body of recipe create and update requests.
// JSON and form encodings are both accepted; form bodies repeat the tags and
// ingredients keys once per ID.
type recipeRequest struct {
	Title       *string          `json:"title" form:"title"`
	TimeMinutes *int             `json:"time_minutes" form:"time_minutes"`
	Price       *decimal.Decimal `json:"price" form:"price"`
	Link        *string          `json:"link" form:"link"`
	Tags        *[]uint          `json:"tags" form:"tags"`
	Ingredients *[]uint          `json:"ingredients" form:"ingredients"`
}

func (r recipeRequest) input() service.RecipeInput {
	return service.RecipeInput{
		Title:         r.Title,
		TimeMinutes:   r.TimeMinutes,
		Price:         r.Price,
		Link:          r.Link,
		TagIDs:        r.Tags,
		IngredientIDs: r.Ingredients,
	}
}

// parseRecipeRequest decodes the body by content type. Type errors are
// reported per field; a body that cannot be read at all yields errMalformedBody.
func parseRecipeRequest(c *fiber.Ctx) (recipeRequest, error) {
	ctype := strings.ToLower(c.Get(fiber.HeaderContentType))
	switch {
	case strings.HasPrefix(ctype, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return recipeRequest{}, errMalformedBody
		}
		return parseRecipeForm(form.Value)
	case strings.HasPrefix(ctype, fiber.MIMEApplicationForm):
		values := map[string][]string{}
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			values[string(k)] = append(values[string(k)], string(v))
		})
		return parseRecipeForm(values)
	default:
		return parseRecipeJSON(c.Body())
	}
}

func parseRecipeJSON(body []byte) (recipeRequest, error) {
	var req recipeRequest
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return req, errMalformedBody
	}

	errs := models.FieldErrors{}
	fields := jsonFields{raw: raw, errs: errs}
	req.Title = fields.str("title")
	req.TimeMinutes = fields.integer("time_minutes")
	req.Price = fields.number("price")
	req.Link = fields.str("link")
	req.Tags = fields.ids("tags")
	req.Ingredients = fields.ids("ingredients")
	return req, errs.Err()
}

type jsonFields struct {
	raw  map[string]json.RawMessage
	errs models.FieldErrors
}

// value returns the raw value of key, recording an error for null.
func (f jsonFields) value(key string) (json.RawMessage, bool) {
	v, ok := f.raw[key]
	if !ok {
		return nil, false
	}
	if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		f.errs.Add(key, msgNotNull)
		return nil, false
	}
	return v, true
}

func (f jsonFields) str(key string) *string {
	v, ok := f.value(key)
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		f.errs.Add(key, msgInvalidStr)
		return nil
	}
	return &s
}

func (f jsonFields) integer(key string) *int {
	v, ok := f.value(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(scalarText(v))
	if err != nil {
		f.errs.Add(key, msgInvalidInt)
		return nil
	}
	return &n
}

func (f jsonFields) number(key string) *decimal.Decimal {
	v, ok := f.value(key)
	if !ok {
		return nil
	}
	d, err := decimal.NewFromString(scalarText(v))
	if err != nil {
		f.errs.Add(key, msgInvalidNum)
		return nil
	}
	return &d
}

func (f jsonFields) ids(key string) *[]uint {
	v, ok := f.value(key)
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		f.errs.Add(key, msgExpectedList)
		return nil
	}
	texts := make([]string, 0, len(items))
	for _, item := range items {
		texts = append(texts, scalarText(item))
	}
	return parsePKs(key, texts, f.errs)
}

// scalarText unquotes a JSON string and returns other scalars verbatim, so
// "30" and 30 read the same.
func scalarText(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(v))
}

func parseRecipeForm(values map[string][]string) (recipeRequest, error) {
	var req recipeRequest
	errs := models.FieldErrors{}

	first := func(key string) (string, bool) {
		vs, ok := values[key]
		if !ok || len(vs) == 0 {
			return "", false
		}
		return vs[0], true
	}

	if v, ok := first("title"); ok {
		req.Title = &v
	}
	if v, ok := first("link"); ok {
		req.Link = &v
	}
	if v, ok := first("time_minutes"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs.Add("time_minutes", msgInvalidInt)
		} else {
			req.TimeMinutes = &n
		}
	}
	if v, ok := first("price"); ok {
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			errs.Add("price", msgInvalidNum)
		} else {
			req.Price = &d
		}
	}
	if vs, ok := values["tags"]; ok {
		req.Tags = parsePKs("tags", nonBlank(vs), errs)
	}
	if vs, ok := values["ingredients"]; ok {
		req.Ingredients = parsePKs("ingredients", nonBlank(vs), errs)
	}
	return req, errs.Err()
}

// nonBlank drops empty form values; a lone empty value submits an empty list.
func nonBlank(vs []string) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parsePKs(key string, texts []string, errs models.FieldErrors) *[]uint {
	ids := make([]uint, 0, len(texts))
	for _, text := range texts {
		id, err := strconv.ParseUint(text, 10, 64)
		if err != nil || id == 0 {
			errs.Add(key, fmt.Sprintf("Incorrect type. Expected pk value, received %q.", text))
			return nil
		}
		ids = append(ids, uint(id))
	}
	return &ids
}
