// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package fetch

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

const testBase = "https://api.example.test"

func testCreds() Credentials {
	return Credentials{APIKey: "key-1"}
}

func mustBuild(t *testing.T, kind Kind, coord Coordinate, opts BuildOptions, cursor string) *Request {
	t.Helper()
	req, err := Build(testBase, kind, testCreds(), coord, opts, cursor)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return req
}

func queryOf(t *testing.T, rawURL string) url.Values {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("built URL does not parse: %v", err)
	}
	return u.Query()
}

func TestBuildListDataStores(t *testing.T) {
	t.Parallel()

	req := mustBuild(t, KindListDataStores, Coordinate{UniverseID: 12345}, BuildOptions{Prefix: "Play"}, "")

	if req.Method != http.MethodGet {
		t.Errorf("expected GET, got %s", req.Method)
	}
	if !strings.HasPrefix(req.URL, testBase+"/standard-datastores/v1/universes/12345/standard-datastores?") {
		t.Errorf("unexpected URL %s", req.URL)
	}
	q := queryOf(t, req.URL)
	if q.Get("limit") != "50" {
		t.Errorf("datastore listing must use limit=50, got %q", q.Get("limit"))
	}
	if q.Get("prefix") != "Play" {
		t.Errorf("expected prefix Play, got %q", q.Get("prefix"))
	}
	if q.Has("cursor") {
		t.Error("cursor must be absent on the first page")
	}
	if req.Header.Get("x-api-key") != "key-1" {
		t.Errorf("missing auth header, got %q", req.Header.Get("x-api-key"))
	}
	if req.Header.Get("content-type") != "" {
		t.Error("GET must not carry a content-type header")
	}
}

func TestBuildCursorThreading(t *testing.T) {
	t.Parallel()

	req := mustBuild(t, KindListDataStores, Coordinate{UniverseID: 1}, BuildOptions{}, "cur/with special&chars")
	q := queryOf(t, req.URL)
	if q.Get("cursor") != "cur/with special&chars" {
		t.Errorf("cursor not round-tripped through encoding: %q", q.Get("cursor"))
	}
	if !strings.Contains(req.URL, "cursor=cur%2Fwith+special%26chars") {
		t.Errorf("cursor not percent-encoded in URL: %s", req.URL)
	}
}

func TestBuildListEntriesScopeHandling(t *testing.T) {
	t.Parallel()

	t.Run("explicit scope", func(t *testing.T) {
		req := mustBuild(t, KindListEntries, Coordinate{UniverseID: 7, Name: "DS", Scope: "special"}, BuildOptions{}, "")
		q := queryOf(t, req.URL)
		if q.Get("scope") != "special" {
			t.Errorf("expected scope=special, got %q", q.Get("scope"))
		}
		if q.Has("AllScopes") {
			t.Error("AllScopes must be absent when a scope is given")
		}
		if q.Get("limit") != "100" {
			t.Errorf("entry listing must use limit=100, got %q", q.Get("limit"))
		}
	})

	t.Run("empty scope widens", func(t *testing.T) {
		req := mustBuild(t, KindListEntries, Coordinate{UniverseID: 7, Name: "DS"}, BuildOptions{}, "")
		q := queryOf(t, req.URL)
		if q.Get("AllScopes") != "true" {
			t.Error("empty scope must substitute AllScopes=true")
		}
		if q.Has("scope") {
			t.Error("scope must be absent when AllScopes is set")
		}
	})
}

func TestBuildEntryDetailDefaultsScope(t *testing.T) {
	t.Parallel()

	req := mustBuild(t, KindGetEntry, Coordinate{UniverseID: 7, Name: "DS", Key: "k 1"}, BuildOptions{}, "")
	q := queryOf(t, req.URL)
	if q.Get("scope") != "global" {
		t.Errorf("detail lookup must default scope to global, got %q", q.Get("scope"))
	}
	if q.Get("entryKey") != "k 1" {
		t.Errorf("entry key not encoded round-trippable, got %q", q.Get("entryKey"))
	}
}

func TestBuildSetEntryHeaders(t *testing.T) {
	t.Parallel()

	body := []byte(`{"gold":5}`)
	req := mustBuild(t, KindSetEntry,
		Coordinate{UniverseID: 7, Name: "DS", Key: "k"},
		BuildOptions{Body: body, UserIDs: []int64{123, 456}, Attributes: `{"tag":"x"}`}, "")

	if req.Method != http.MethodPost {
		t.Fatalf("expected POST, got %s", req.Method)
	}
	if string(req.Body) != `{"gold":5}` {
		t.Errorf("body must be the exact bytes given, got %q", req.Body)
	}
	if req.Header.Get("content-type") != "application/json" {
		t.Errorf("missing content-type, got %q", req.Header.Get("content-type"))
	}
	// MD5("{\"gold\":5}") base64
	if got := req.Header.Get("content-md5"); got != contentMD5(body) || got == "" {
		t.Errorf("integrity header mismatch: %q", got)
	}
	if req.Header.Get("roblox-entry-userids") != "[123,456]" {
		t.Errorf("unexpected userids header %q", req.Header.Get("roblox-entry-userids"))
	}
	if req.Header.Get("roblox-entry-attributes") != `{"tag":"x"}` {
		t.Errorf("unexpected attributes header %q", req.Header.Get("roblox-entry-attributes"))
	}
}

func TestBuildSetEntryOmitsEmptyMetadata(t *testing.T) {
	t.Parallel()

	req := mustBuild(t, KindSetEntry, Coordinate{UniverseID: 7, Name: "DS", Key: "k"}, BuildOptions{Body: []byte(`1`)}, "")
	if req.Header.Get("roblox-entry-userids") != "" {
		t.Error("userids header must be absent when no ids are given")
	}
	if req.Header.Get("roblox-entry-attributes") != "" {
		t.Error("attributes header must be absent when empty")
	}
}

func TestBuildOrderedEntriesPathEscaping(t *testing.T) {
	t.Parallel()

	req := mustBuild(t, KindListOrderedEntries,
		Coordinate{UniverseID: 9, Name: "hi scores/v2"}, BuildOptions{Descending: true}, "")

	if !strings.Contains(req.URL, "/orderedDataStores/hi%20scores%2Fv2/scopes/global/entries") {
		t.Errorf("name not path-escaped: %s", req.URL)
	}
	q := queryOf(t, req.URL)
	if q.Get("order_by") != "desc" {
		t.Errorf("expected order_by=desc, got %q", q.Get("order_by"))
	}
}

func TestBuildPublishMessage(t *testing.T) {
	t.Parallel()

	req := mustBuild(t, KindPublishMessage, Coordinate{UniverseID: 9, Name: "announcements"}, BuildOptions{Body: []byte("hello")}, "")

	if req.Method != http.MethodPost {
		t.Fatalf("expected POST, got %s", req.Method)
	}
	if !strings.HasSuffix(req.URL, "/messaging-service/v1/universes/9/topics/announcements") {
		t.Errorf("unexpected URL %s", req.URL)
	}
	if string(req.Body) != `{"message":"hello"}` {
		t.Errorf("unexpected payload %q", req.Body)
	}
	if req.Header.Get("content-md5") != contentMD5(req.Body) {
		t.Error("integrity header must cover the encoded payload")
	}
}

func TestBuildIsPure(t *testing.T) {
	t.Parallel()

	coord := Coordinate{UniverseID: 5, Name: "DS", Key: "k"}
	first := mustBuild(t, KindGetEntry, coord, BuildOptions{}, "")
	second := mustBuild(t, KindGetEntry, coord, BuildOptions{}, "")
	if first.URL != second.URL || first.Method != second.Method {
		t.Error("identical inputs must build identical descriptors")
	}
}

func TestBuildUnknownKind(t *testing.T) {
	t.Parallel()

	if _, err := Build(testBase, Kind(99), testCreds(), Coordinate{}, BuildOptions{}, ""); err == nil {
		t.Error("expected error for unknown endpoint kind")
	}
}
