// Package flash keeps one-shot notices in a cookie so that they survive
// a redirect and are shown on the next page.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
)

const cookieName = "flash"

type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Error   Level = "error"
)

type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Add queues a message on top of the ones already carried by the request.
func Add(w http.ResponseWriter, r *http.Request, level Level, text string) error {
	messages := append(read(r), Message{Level: level, Text: text})

	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal flash messages: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Pop returns queued messages and clears the cookie.
func Pop(w http.ResponseWriter, r *http.Request) []Message {
	messages := read(r)
	if len(messages) == 0 {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	return messages
}

func read(r *http.Request) []Message {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return nil
	}

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}

	var messages []Message
	if err = json.Unmarshal(data, &messages); err != nil {
		return nil
	}

	return messages
}
