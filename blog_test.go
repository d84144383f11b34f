package main

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/cnsenarathna/portfolio/store"
)

func TestBlog_Empty(t *testing.T) {
	site := newTestSite(t)
	for _, path := range []string{"/blog.html", "/blog"} {
		rr := site.get(path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "No posts found. Check back later!") {
			t.Errorf("%s missing empty message", path)
		}
	}
}

func TestBlog_ListsPosts(t *testing.T) {
	site := newTestSite(t)
	p, err := site.store.CreatePost(context.Background(), store.PostInput{
		Title: "Threat Modelling 101", Summary: "Where to start.", Content: "Body",
	})
	if err != nil {
		t.Fatal(err)
	}

	body := site.get("/blog.html").Body.String()
	for _, want := range []string{"Threat Modelling 101", "Where to start.", "Posted on", "post.html?id=" + p.ID, "Read More"} {
		if !strings.Contains(body, want) {
			t.Errorf("blog page missing %q", want)
		}
	}
}

func TestBlog_StoreFailure(t *testing.T) {
	site := newTestSite(t)
	site.store.Close()

	rr := site.get("/blog.html")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Error loading posts.") {
		t.Error("missing error message")
	}
}

func TestPost(t *testing.T) {
	site := newTestSite(t)
	p, err := site.store.CreatePost(context.Background(), store.PostInput{
		Title:   "Hardening SSH",
		Summary: "Keys only.",
		Content: "## Steps\n\nDisable **password** login.\n\n<script>alert(1)</script>",
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"/post.html?id=" + p.ID, "/post/" + p.ID} {
		rr := site.get(path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
		body := rr.Body.String()
		for _, want := range []string{"<h1>Hardening SSH</h1>", "<h2>Steps</h2>", "<strong>password</strong>"} {
			if !strings.Contains(body, want) {
				t.Errorf("%s missing %q", path, want)
			}
		}
		if strings.Contains(body, "<script>alert(1)</script>") {
			t.Errorf("%s passed raw HTML through", path)
		}
	}
}

func TestPost_Outcomes(t *testing.T) {
	site := newTestSite(t)

	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{"missing id", "/post.html", http.StatusBadRequest, "No post ID provided."},
		{"unknown id", "/post.html?id=nope", http.StatusNotFound, "Post not found."},
		{"unknown id path", "/post/nope", http.StatusNotFound, "Post not found."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := site.get(tt.path)
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			if !strings.Contains(rr.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}

func TestPost_StoreFailure(t *testing.T) {
	site := newTestSite(t)
	site.store.Close()

	rr := site.get("/post.html?id=abc")
	if rr.Code != http.StatusInternalServerError || !strings.Contains(rr.Body.String(), "Error loading post.") {
		t.Errorf("got %d %q", rr.Code, rr.Body.String())
	}
}

func TestRenderMarkdown(t *testing.T) {
	got, err := renderMarkdown("*hi*")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(got)) != "<p><em>hi</em></p>" {
		t.Errorf("renderMarkdown() = %q", got)
	}
}
