package models

import "time"

// DefaultCode is the placeholder buffer every new session starts with.
const DefaultCode = "// Start coding here..."

// Language identifies the editor mode shared by a session.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguagePython     Language = "python"
	LanguageOther      Language = "other"

	DefaultLanguage = LanguageJavaScript
)

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	switch l {
	case LanguageJavaScript, LanguagePython, LanguageOther:
		return true
	}
	return false
}

// Session is one collaborative document: a shared code buffer plus the
// language it is edited in. All state is process-memory only.
type Session struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Language     Language  `json:"language"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
}
