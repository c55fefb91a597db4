package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"deckchat/internal/config"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(config.EndpointConfig{URL: srv.URL, TimeoutMS: 5000})
}

func jsonReply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = io.WriteString(w, body)
	}
}

func TestDispatchNotConfigured(t *testing.T) {
	c := New(config.EndpointConfig{URL: "  "})
	if c.Configured() {
		t.Fatal("blank URL should not count as configured")
	}
	if _, err := c.Dispatch(context.Background(), Request{Message: "hi"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err=%v, want ErrNotConfigured", err)
	}
}

func TestDispatchSendsJSONBody(t *testing.T) {
	var got map[string]string
	var contentType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		jsonReply(`{"message":"Hi there"}`)(w, r)
	})

	res, err := c.Dispatch(context.Background(), Request{Message: "Hello", SessionID: "s1"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if contentType != "application/json" {
		t.Fatalf("Content-Type=%q", contentType)
	}
	if len(got) != 2 || got["message"] != "Hello" || got["sessionId"] != "s1" {
		t.Fatalf("body=%v", got)
	}
	if res != (Result{Kind: ResultText, Text: "Hi there"}) {
		t.Fatalf("res=%+v", res)
	}
}

func TestDispatchSendsMultipartWithAttachment(t *testing.T) {
	type form struct {
		message, sessionID, fileType, fileName, fileBody string
	}
	var got form
	var parseErr error
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if parseErr = r.ParseMultipartForm(1 << 20); parseErr != nil {
			return
		}
		got.message = r.FormValue("message")
		got.sessionID = r.FormValue("sessionId")
		got.fileType = r.FormValue("fileType")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			parseErr = err
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		got.fileName = hdr.Filename
		got.fileBody = string(b)
		jsonReply(`{"message":"got it"}`)(w, r)
	})

	_, err := c.Dispatch(context.Background(), Request{
		Message:    "summarize",
		SessionID:  "s9",
		Attachment: &Attachment{Name: "Report.PDF", Data: []byte("%PDF-1.4")},
	})
	if parseErr != nil {
		t.Fatalf("server could not read the form: %v", parseErr)
	}
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if want := (form{"summarize", "s9", "pdf", "Report.PDF", "%PDF-1.4"}); got != want {
		t.Fatalf("form=%+v, want %+v", got, want)
	}
}

func TestDispatchClassifiesResponses(t *testing.T) {
	cases := []struct {
		name string
		body string
		want Result
	}{
		{"string document", `{"data_result":"# Report"}`, Result{Kind: ResultDocument, Raw: "# Report"}},
		{"object document", `{"data_result":{"a":1}}`, Result{Kind: ResultDocument, Raw: "{\n  \"a\": 1\n}"}},
		{"object keeps key order", `{"data_result":{"zeta":1,"alpha":{"y":[1,2],"b":"<x>"}}}`,
			Result{Kind: ResultDocument, Raw: "{\n  \"zeta\": 1,\n  \"alpha\": {\n    \"y\": [\n      1,\n      2\n    ],\n    \"b\": \"<x>\"\n  }\n}"}},
		{"array document", `{"data_result":["b","a"]}`, Result{Kind: ResultDocument, Raw: "[\n  \"b\",\n  \"a\"\n]"}},
		{"document wins over message", `{"data_result":"doc","message":"text"}`, Result{Kind: ResultDocument, Raw: "doc"}},
		{"empty document falls through", `{"data_result":"","message":"text"}`, Result{Kind: ResultText, Text: "text"}},
		{"message", `{"message":"Hi there"}`, Result{Kind: ResultText, Text: "Hi there"}},
		{"empty message", `{"message":""}`, Result{Kind: ResultUnrecognized}},
		{"other shape", `{"output":"x"}`, Result{Kind: ResultUnrecognized}},
		{"json array", `[1,2]`, Result{Kind: ResultUnrecognized}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, jsonReply(tc.body))
			res, err := c.Dispatch(context.Background(), Request{Message: "x"})
			if err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			if res != tc.want {
				t.Fatalf("res=%+v, want %+v", res, tc.want)
			}
		})
	}
}

func TestDispatchStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := c.Dispatch(context.Background(), Request{Message: "x"})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err=%v, want *StatusError", err)
	}
	if se.Code != 500 || !strings.Contains(se.Body, "boom") {
		t.Fatalf("status error=%+v", se)
	}
}

func TestDispatchNonJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html>oops</html>")
	})
	if _, err := c.Dispatch(context.Background(), Request{Message: "x"}); !errors.Is(err, ErrNotJSON) {
		t.Fatalf("err=%v, want ErrNotJSON", err)
	}
}

func TestDispatchMalformedJSON(t *testing.T) {
	c := newTestClient(t, jsonReply(`{"message":`))
	_, err := c.Dispatch(context.Background(), Request{Message: "x"})
	if err == nil {
		t.Fatal("expected a decode error")
	}
	var se *StatusError
	if errors.Is(err, ErrNotJSON) || errors.As(err, &se) {
		t.Fatalf("err=%v should be a plain decode error", err)
	}
}

func TestDispatchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(config.EndpointConfig{URL: url, TimeoutMS: 1000})
	_, err := c.Dispatch(context.Background(), Request{Message: "x"})
	if err == nil || !strings.Contains(err.Error(), "http do") {
		t.Fatalf("err=%v, want an http do error", err)
	}
}

func TestLoadAttachment(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	a, err := LoadAttachment(write("notes.TXT", []byte("hello")), 10)
	if err != nil {
		t.Fatalf("LoadAttachment: %v", err)
	}
	if a.Name != "notes.TXT" || a.Extension() != "txt" || !bytes.Equal(a.Data, []byte("hello")) {
		t.Fatalf("attachment=%+v ext=%q", a, a.Extension())
	}

	if _, err := LoadAttachment(write("image.png", []byte("x")), 10); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("png err=%v, want ErrUnsupportedType", err)
	}
	if _, err := LoadAttachment(write("big.pdf", make([]byte, 2<<20)), 1); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("big err=%v, want ErrTooLarge", err)
	}
	if _, err := LoadAttachment(filepath.Join(dir, "missing.pdf"), 10); err == nil {
		t.Fatal("missing file should fail")
	}
}
