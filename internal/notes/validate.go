package notes

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	TitleMinLen = 3
	TitleMaxLen = 100
)

// ValidationError carrega mensagens por campo.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return e.Message + ": " + strings.Join(parts, " ")
}

// ValidateCreate exige título e conteúdo e devolve os valores já aparados.
func ValidateCreate(in Input) (title, content string, err error) {
	if in.Title == nil || in.Content == nil ||
		strings.TrimSpace(*in.Title) == "" || strings.TrimSpace(*in.Content) == "" {
		return "", "", &ValidationError{Message: "Title and content are required fields."}
	}
	title, content = strings.TrimSpace(*in.Title), strings.TrimSpace(*in.Content)
	if fields := checkFields(title, content); len(fields) > 0 {
		return "", "", &ValidationError{Message: "Note validation failed.", Fields: fields}
	}
	return title, content, nil
}

// ValidateUpdate aplica só os campos enviados sobre a nota atual.
func ValidateUpdate(current Note, in Input) (Note, error) {
	if in.Title == nil && in.Content == nil {
		return Note{}, &ValidationError{Message: "Provide a title or content to update."}
	}
	next := current
	if in.Title != nil {
		next.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		next.Content = strings.TrimSpace(*in.Content)
	}
	if fields := checkFields(next.Title, next.Content); len(fields) > 0 {
		return Note{}, &ValidationError{Message: "Note validation failed.", Fields: fields}
	}
	return next, nil
}

func checkFields(title, content string) map[string]string {
	fields := make(map[string]string)
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		fields["title"] = "Title is required."
	case n < TitleMinLen:
		fields["title"] = "Title must be at least 3 characters long."
	case n > TitleMaxLen:
		fields["title"] = "Title cannot exceed 100 characters."
	}
	if content == "" {
		fields["content"] = "Content is required."
	}
	return fields
}
