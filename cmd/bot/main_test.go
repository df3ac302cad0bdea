package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"homework_status_bot/internal/domain/failure"
)

func setBaseEnv(t *testing.T, endpoint, telegramURL string) {
	t.Helper()
	t.Setenv("PRACTICUM_ENDPOINT", endpoint)
	t.Setenv("TELEGRAM_API_URL", telegramURL)
	t.Setenv("PRACTICUM_TOKEN", "p-token")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("POLL_SCHEDULE", "10m")
	t.Setenv("HTTP_TIMEOUT", "2s")
	t.Setenv("LOG_LEVEL", "panic")
	t.Setenv("DATABASE_URL", "")
}

func TestRunAbortsWithoutCredentials(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	for _, name := range []string{"PRACTICUM_TOKEN", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID"} {
		t.Run(name, func(t *testing.T) {
			setBaseEnv(t, srv.URL, srv.URL)
			t.Setenv(name, "")

			err := run(context.Background())
			if failure.KindOf(err) != failure.KindConfig {
				t.Fatalf("run() error = %v, want config failure", err)
			}
			if !strings.Contains(err.Error(), name) {
				t.Fatalf("run() error = %q, want it to name %s", err, name)
			}
		})
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Fatalf("made %d network calls before aborting, want 0", n)
	}
}

func TestRunPollsAndNotifies(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requests := make(chan *http.Request, 1)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case requests <- r.Clone(context.Background()):
		default:
		}
		_, _ = w.Write([]byte(`{"homeworks":[{"id":1,"homework_name":"hw1.zip","status":"reviewing"}],"current_date":1700000000}`))
	}))
	defer api.Close()

	texts := make(chan string, 1)
	tg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		text, _ := body["text"].(string)
		select {
		case texts <- text:
		default:
		}
		cancel()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":1700000000,"chat":{"id":42,"type":"private"}}}`))
	}))
	defer tg.Close()

	setBaseEnv(t, api.URL, tg.URL)

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	select {
	case r := <-requests:
		if r.Header.Get("Authorization") != "OAuth p-token" || r.URL.Query().Get("from_date") == "" {
			t.Fatalf("request auth=%q query=%q", r.Header.Get("Authorization"), r.URL.RawQuery)
		}
	default:
		t.Fatal("status endpoint was never queried")
	}
	select {
	case text := <-texts:
		want := `Изменился статус проверки работы "hw1.zip". Работа взята на проверку ревьюером.`
		if text != want {
			t.Fatalf("notification = %q, want %q", text, want)
		}
	default:
		t.Fatal("no notification was sent")
	}
}

func TestFatalMessageSeparatesMissingFromInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	tests := []struct {
		name, key, value, want string
	}{
		{"missing", "TELEGRAM_TOKEN", "", "Отсутствует одна из обязательных переменных окружения."},
		{"invalid chat id", "TELEGRAM_CHAT_ID", "channel", "Некорректное значение переменной окружения."},
		{"invalid schedule", "POLL_SCHEDULE", "whenever", "Некорректное значение переменной окружения."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t, srv.URL, srv.URL)
			t.Setenv(tt.key, tt.value)

			err := run(context.Background())
			if err == nil {
				t.Fatal("run() error = nil, want config failure")
			}
			if got := fatalMessage(err); got != tt.want {
				t.Fatalf("fatalMessage(%v) = %q, want %q", err, got, tt.want)
			}
		})
	}

	if got := fatalMessage(errors.New("boom")); got != "Bot stopped with an unrecoverable error" {
		t.Fatalf("fatalMessage() = %q for a non-config error", got)
	}
}

func TestRunAcceptsChannelUsername(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"homeworks":[{"id":1,"homework_name":"hw1.zip","status":"approved"}],"current_date":1700000000}`))
	}))
	defer api.Close()

	chatIDs := make(chan any, 1)
	tg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		select {
		case chatIDs <- body["chat_id"]:
		default:
		}
		cancel()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":1700000000,"chat":{"id":-100777,"type":"channel"}}}`))
	}))
	defer tg.Close()

	setBaseEnv(t, api.URL, tg.URL)
	t.Setenv("TELEGRAM_CHAT_ID", "@homework_alerts")

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	select {
	case id := <-chatIDs:
		if id != "@homework_alerts" {
			t.Fatalf("chat_id = %v, want @homework_alerts", id)
		}
	default:
		t.Fatal("no notification was sent")
	}
}
