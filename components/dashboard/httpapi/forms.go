package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"strconv"
	"strings"

	"github.com/goliatone/go-csdash/components/dashboard"
	"github.com/goliatone/go-csdash/components/dashboard/commands"
)

// FormValue reads one submitted form field.
type FormValue func(key string) string

// IsFormPost reports whether a request body is an HTML form submission.
func IsFormPost(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

// ReportedOnPage reports errors the page already shows as a notification.
// Form posts that fail this way return to the page instead of an error body.
func ReportedOnPage(err error) bool {
	return errors.Is(err, dashboard.ErrDraftInvalid) || errors.Is(err, dashboard.ErrSaveRejected)
}

// DraftFromForm reads the interaction form fields.
func DraftFromForm(value FormValue) (dashboard.InteractionDraft, error) {
	draft := dashboard.InteractionDraft{
		InteractionType: strings.TrimSpace(value("interaction_type")),
		Notes:           value("notes"),
		Recommendations: value("recommendations"),
	}
	id, err := formInt(value, "customer_id")
	if err != nil {
		return draft, err
	}
	draft.CustomerID = id
	return draft, nil
}

// RecommendFromForm reads the fields of a recommend button form.
func RecommendFromForm(value FormValue) (commands.RecommendProductInput, error) {
	input := commands.RecommendProductInput{ProductName: strings.TrimSpace(value("product_name"))}
	id, err := formInt(value, "product_id")
	if err != nil {
		return input, err
	}
	input.ProductID = id
	return input, nil
}

// SuggestionFromForm reads the suggestion text of a suggestion button form.
func SuggestionFromForm(value FormValue) commands.AppendSuggestionInput {
	return commands.AppendSuggestionInput{Text: value("text")}
}

func formInt(value FormValue, key string) (int, error) {
	raw := strings.TrimSpace(value(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}

// decodeJSON accepts an empty body as the zero value.
func decodeJSON(body io.Reader, v any) error {
	if body == nil {
		return nil
	}
	err := json.NewDecoder(body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
