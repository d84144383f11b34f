package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cnsenarathna/portfolio/store"
)

func (s *testSite) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	rr := s.postForm("/admin/login", url.Values{"email": {testEmail}, "password": {testPassword}})
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/admin/dashboard" {
		t.Fatalf("login = %d -> %q", rr.Code, rr.Header().Get("Location"))
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func (s *testSite) upload(t *testing.T, field, filename string, data []byte, cookie *http.Cookie) *bytes.Buffer {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/cv", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(cookie)
	rr := s.do(req)
	return rr.Body
}

func TestAdmin_RequiresSession(t *testing.T) {
	site := newTestSite(t)
	for _, path := range []string{"/admin/dashboard", "/admin/api/stats", "/admin/export/stats"} {
		rr := site.get(path)
		if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/admin/login" {
			t.Errorf("%s = %d -> %q, want redirect to login", path, rr.Code, rr.Header().Get("Location"))
		}
	}

	bogus := &http.Cookie{Name: sessionCookie, Value: "not-a-token"}
	if rr := site.get("/admin/dashboard", bogus); rr.Code != http.StatusFound {
		t.Errorf("bogus session status = %d", rr.Code)
	}
}

func TestAdmin_LoginFailure(t *testing.T) {
	site := newTestSite(t)
	rr := site.postForm("/admin/login", url.Values{"email": {testEmail}, "password": {"wrong"}})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Failed to login. Please check your credentials.") {
		t.Error("missing login failure message")
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie {
			t.Error("failed login set a session cookie")
		}
	}
}

func TestAdmin_LoginDashboardLogout(t *testing.T) {
	site := newTestSite(t)
	cookie := site.signIn(t)

	rr := site.get("/admin/dashboard", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", rr.Code)
	}
	for _, want := range []string{"Upload New CV", "Create New Blog Post", "Logout"} {
		if !strings.Contains(rr.Body.String(), want) {
			t.Errorf("dashboard missing %q", want)
		}
	}

	if rr := site.get("/admin/login", cookie); rr.Code != http.StatusFound {
		t.Errorf("login page with session = %d, want redirect", rr.Code)
	}

	rr = site.get("/admin/logout", cookie)
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/admin/login" {
		t.Errorf("logout = %d -> %q", rr.Code, rr.Header().Get("Location"))
	}
	cleared := false
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not clear the session cookie")
	}
}

func TestAdmin_CVUpload(t *testing.T) {
	site := newTestSite(t)
	cookie := site.signIn(t)

	if body := site.upload(t, "", "", nil, cookie).String(); !strings.Contains(body, "Please select a CV file first.") {
		t.Errorf("missing file response: %q", body)
	}
	if body := site.upload(t, "cv", "empty.pdf", nil, cookie).String(); !strings.Contains(body, "Please select a CV file first.") {
		t.Errorf("empty file response: %q", body)
	}

	if rr := site.get("/cv"); rr.Code != http.StatusNotFound || rr.Body.String() != "CV Not Available" {
		t.Errorf("/cv before upload = %d %q", rr.Code, rr.Body.String())
	}

	pdf := []byte("%PDF-1.4\n%test resume\n")
	if body := site.upload(t, "cv", "resume.pdf", pdf, cookie).String(); !strings.Contains(body, "CV uploaded successfully!") {
		t.Fatalf("upload response: %q", body)
	}

	rr := site.get("/cv")
	if rr.Code != http.StatusFound {
		t.Fatalf("/cv status = %d", rr.Code)
	}
	link := rr.Header().Get("Location")
	if !strings.HasPrefix(link, "/files/cv.pdf?token=") {
		t.Fatalf("download link = %q", link)
	}

	rr = site.get(link)
	if rr.Code != http.StatusOK || !bytes.Equal(rr.Body.Bytes(), pdf) {
		t.Errorf("download = %d %q", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/pdf") {
		t.Errorf("Content-Type = %q", ct)
	}

	if rr := site.get("/files/cv.pdf?token=forged"); rr.Code != http.StatusForbidden {
		t.Errorf("forged token status = %d", rr.Code)
	}
	if rr := site.get("/files/cv.pdf"); rr.Code != http.StatusForbidden {
		t.Errorf("missing token status = %d", rr.Code)
	}
}

func TestAdmin_CVUploadTooLarge(t *testing.T) {
	site := newTestSite(t)
	cookie := site.signIn(t)

	big := bytes.Repeat([]byte("a"), 2<<20)
	body := site.upload(t, "cv", "big.pdf", big, cookie).String()
	if strings.Contains(body, "CV uploaded successfully!") {
		t.Error("oversized upload accepted")
	}
}

func TestAdmin_CreatePost(t *testing.T) {
	site := newTestSite(t)
	cookie := site.signIn(t)

	rr := site.postForm("/admin/posts", url.Values{"title": {"T"}, "summary": {"  "}, "content": {"C"}}, cookie)
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "All fields are required.") {
		t.Errorf("blank summary = %d %q", rr.Code, rr.Body.String())
	}
	rr = site.postForm("/admin/posts", url.Values{"title": {"T"}}, cookie)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing fields status = %d", rr.Code)
	}

	rr = site.postForm("/admin/posts", url.Values{
		"title":   {" First post "},
		"summary": {"Summary"},
		"content": {"Hello **world**"},
	}, cookie)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Blog post created successfully!") {
		t.Fatalf("create = %d %q", rr.Code, rr.Body.String())
	}

	posts, err := site.store.ListPosts(context.Background())
	if err != nil || len(posts) != 1 {
		t.Fatalf("ListPosts() = %v, %v", posts, err)
	}
	if posts[0].Title != "First post" || posts[0].CreatedAt.IsZero() {
		t.Errorf("stored post = %+v", posts[0])
	}

	if !strings.Contains(site.get("/blog.html").Body.String(), "First post") {
		t.Error("new post not listed on the blog")
	}
}

func TestAdmin_CreatePostStoreFailure(t *testing.T) {
	site := newTestSite(t)
	cookie := site.signIn(t)
	site.store.Close()

	rr := site.postForm("/admin/posts", url.Values{"title": {"T"}, "summary": {"S"}, "content": {"C"}}, cookie)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestAdmin_StatsAPI(t *testing.T) {
	site := newTestSite(t)
	cookie := site.signIn(t)
	if _, err := site.store.CreatePost(context.Background(), store.PostInput{Title: "a", Summary: "b", Content: "c"}); err != nil {
		t.Fatal(err)
	}
	if err := site.store.RecordVisit(context.Background(), "abc", "agent", "/"); err != nil {
		t.Fatal(err)
	}

	rr := site.get("/admin/api/stats", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var stats store.Stats
	if err := json.NewDecoder(rr.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalPosts != 1 || stats.TotalVisitors != 1 {
		t.Errorf("stats = %+v", stats)
	}

	rr = site.get("/admin/export/stats", cookie)
	if !strings.Contains(rr.Header().Get("Content-Disposition"), "admin-stats.json") {
		t.Errorf("export headers = %v", rr.Header())
	}
}

func TestAdmin_Visitors(t *testing.T) {
	site := newTestSite(t)
	cookie := site.signIn(t)

	if !strings.Contains(site.get("/admin/visitors", cookie).Body.String(), "No visits recorded.") {
		t.Error("empty visitors page missing message")
	}

	if err := site.store.RecordVisit(context.Background(), "feedface", "curl/8", "/blog.html"); err != nil {
		t.Fatal(err)
	}
	rr := site.get("/admin/visitors", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	for _, want := range []string{"feedface", "curl/8", "/blog.html"} {
		if !strings.Contains(rr.Body.String(), want) {
			t.Errorf("visitors page missing %q", want)
		}
	}
}

func TestAdmin_PrivacyCleanup(t *testing.T) {
	site := newTestSite(t)
	cookie := site.signIn(t)
	site.app.cfg.VisitRetention = time.Second

	if err := site.store.RecordVisit(context.Background(), "old", "agent", "/"); err != nil {
		t.Fatal(err)
	}
	// Visits are stamped to the second; let the first one fall out of the window.
	time.Sleep(2100 * time.Millisecond)
	if err := site.store.RecordVisit(context.Background(), "fresh", "agent", "/"); err != nil {
		t.Fatal(err)
	}

	if rr := site.postForm("/admin/privacy/cleanup", nil); rr.Code != http.StatusFound {
		t.Errorf("cleanup without session = %d, want redirect", rr.Code)
	}
	rr := site.postForm("/admin/privacy/cleanup", nil, cookie)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Privacy cleanup initiated") {
		t.Fatalf("cleanup = %d %q", rr.Code, rr.Body.String())
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		visits, err := site.store.RecentVisits(context.Background(), 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(visits) == 1 {
			if visits[0].HashedIP != "fresh" {
				t.Errorf("kept %q, want the fresh visit", visits[0].HashedIP)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("visits after cleanup = %+v", visits)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
