package main

import (
	"bytes"
	"io/ioutil"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nicolagi/blogposts/blog"
	"github.com/nicolagi/blogposts/server"
	"github.com/nicolagi/blogposts/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) string {
	t.Helper()
	c := blog.NewCollection(storage.NewInMemoryStore(), "blog-posts.json")
	ts := httptest.NewServer(server.New(server.WithCollection(c)))
	t.Cleanup(ts.Close)
	u, err := url.Parse(ts.URL)
	require.Nil(t, err)
	return u.Host
}

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	addr := newTestServer(t)

	out, err := runCmd(t, "", "--server", addr, "create", "--data", `{"title":"Hello","body":"World"}`)
	require.Nil(t, err)
	assert.Equal(t, "{\n  \"id\": 1,\n  \"title\": \"Hello\",\n  \"body\": \"World\"\n}\n", out)

	pathname := filepath.Join(t.TempDir(), "patch.json")
	require.Nil(t, ioutil.WriteFile(pathname, []byte(`{"title":"Hi"}`), 0600))
	out, err = runCmd(t, "", "-s", addr, "patch", "1", "-f", pathname)
	require.Nil(t, err)
	assert.Contains(t, out, `"title": "Hi"`)
	assert.Contains(t, out, `"body": "World"`)

	out, err = runCmd(t, `{"title":"Only"}`, "-s", addr, "replace", "1", "-f", "-")
	require.Nil(t, err)
	assert.Equal(t, "{\n  \"id\": 1,\n  \"title\": \"Only\"\n}\n", out)

	out, err = runCmd(t, "", "-s", addr, "--format", "yaml", "get", "1")
	require.Nil(t, err)
	assert.Contains(t, out, "id: 1")
	assert.Contains(t, out, "title: Only")

	out, err = runCmd(t, "", "-s", addr, "list")
	require.Nil(t, err)
	assert.Contains(t, out, `"title": "Only"`)

	_, err = runCmd(t, "", "-s", addr, "delete", "1")
	require.Nil(t, err)

	_, err = runCmd(t, "", "-s", addr, "get", "1")
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "Blog post not found")
}

func TestCommandErrors(t *testing.T) {
	addr := newTestServer(t)
	for _, args := range [][]string{
		{"-s", addr, "create"},
		{"-s", addr, "create", "--data", "{}", "--file", "x.json"},
		{"-s", addr, "get", "abc"},
		{"-s", addr, "get"},
		{"-s", addr, "--format", "xml", "list"},
	} {
		_, err := runCmd(t, "", args...)
		assert.NotNil(t, err, "args %v", args)
	}
}
