package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wrenhq/wren/model"
	"github.com/wrenhq/wren/server/middlewares"
	"github.com/wrenhq/wren/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

// testServer bundles a router backed by the in-memory store with a
// switchable viewer identity, so one test can act as several users.
type testServer struct {
	router *gin.Engine
	store  *store.MemoryStore
	viewer primitive.ObjectID
}

func newTestServer() *testServer {
	ts := &testServer{store: store.NewMemoryStore()}
	ts.router = gin.New()
	auth := func(c *gin.Context) {
		c.Set(middlewares.UserIDKey, ts.viewer)
		c.Next()
	}
	NewServer(ts.store).RegisterRoutes(ts.router, auth)
	return ts
}

func (ts *testServer) addUser(t *testing.T, username string) model.User {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, ts.store.CreateUser(context.Background(), u))
	return *u
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) doForm(t *testing.T, method, path string, fields map[string]string, imageField string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, form.WriteField(k, v))
	}
	if imageField != "" {
		part, err := form.CreateFormFile(imageField, "photo.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("not-really-a-png"))
		require.NoError(t, err)
	}
	require.NoError(t, form.Close())
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), into))
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodPost, "/api/auth/register",
		gin.H{"username": "alice", "email": "alice@example.com", "password": "hunter22"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	decode(t, w, &registered)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice", registered.User.Username)

	// Duplicate username is rejected.
	w = ts.do(t, http.MethodPost, "/api/auth/register",
		gin.H{"username": "alice", "email": "other@example.com", "password": "hunter22"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Short password is rejected.
	w = ts.do(t, http.MethodPost, "/api/auth/register",
		gin.H{"username": "bob", "email": "bob@example.com", "password": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/auth/login",
		gin.H{"username": "alice", "password": "hunter22"})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/auth/login",
		gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/auth/login",
		gin.H{"username": "nobody", "password": "hunter22"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFollowEndpoints(t *testing.T) {
	ts := newTestServer()
	alice := ts.addUser(t, "alice")
	bob := ts.addUser(t, "bob")
	ts.viewer = alice.ID

	path := fmt.Sprintf("/api/users/%s/follow", bob.ID.Hex())
	w := ts.do(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Following again conflicts, following yourself is invalid.
	w = ts.do(t, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = ts.do(t, http.MethodPost, fmt.Sprintf("/api/users/%s/follow", alice.ID.Hex()), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreatePostAndFeed(t *testing.T) {
	ts := newTestServer()
	alice := ts.addUser(t, "alice")
	ts.viewer = alice.ID

	w := ts.doForm(t, http.MethodPost, "/api/posts", map[string]string{"text": "hello"}, "image")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.Post
	decode(t, w, &created)
	assert.Equal(t, "hello", created.Text)
	assert.NotEmpty(t, created.ImageURL)
	require.NotNil(t, created.Author)
	assert.Equal(t, "alice", created.Author.Username)

	// Neither text nor image is a bad request.
	w = ts.doForm(t, http.MethodPost, "/api/posts", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/posts/feed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed []model.Post
	decode(t, w, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, created.ID, feed[0].ID)
	require.NotNil(t, feed[0].Author)
	assert.Equal(t, "alice", feed[0].Author.Username)
}

func TestLikeAndReactEndpoints(t *testing.T) {
	ts := newTestServer()
	alice := ts.addUser(t, "alice")
	bob := ts.addUser(t, "bob")
	ts.viewer = alice.ID

	w := ts.doForm(t, http.MethodPost, "/api/posts", map[string]string{"text": "react to me"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var post model.Post
	decode(t, w, &post)

	ts.viewer = bob.ID
	w = ts.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%s/react", post.ID.Hex()), gin.H{"kind": "love"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var reacted model.Post
	decode(t, w, &reacted)
	require.Len(t, reacted.Reactions, 1)
	assert.Equal(t, model.ReactionLove, reacted.Reactions[0].Kind)
	assert.True(t, reacted.LikedBy(bob.ID))

	w = ts.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%s/react", post.ID.Hex()), gin.H{"kind": "sparkle"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/posts/%s/react", post.ID.Hex()), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cleared model.Post
	decode(t, w, &cleared)
	assert.Empty(t, cleared.Reactions)
	assert.False(t, cleared.LikedBy(bob.ID))

	w = ts.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%s/like", post.ID.Hex()), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var liked model.Post
	decode(t, w, &liked)
	assert.True(t, liked.LikedBy(bob.ID))
}

func TestRepostEndpoint(t *testing.T) {
	ts := newTestServer()
	alice := ts.addUser(t, "alice")
	bob := ts.addUser(t, "bob")
	ts.viewer = alice.ID

	w := ts.doForm(t, http.MethodPost, "/api/posts", map[string]string{"text": "original"}, "image")
	require.Equal(t, http.StatusCreated, w.Code)
	var original model.Post
	decode(t, w, &original)

	// No body at all is fine for a plain repost.
	ts.viewer = bob.ID
	w = ts.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%s/repost", original.ID.Hex()), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var repost model.Post
	decode(t, w, &repost)
	assert.True(t, repost.IsRepost())
	require.NotNil(t, repost.OriginalPostID)
	assert.Equal(t, original.ID, *repost.OriginalPostID)
	// The original's image belongs to the original, not the repost record.
	assert.Empty(t, repost.ImageURL)
}

func TestMessagingFlow(t *testing.T) {
	ts := newTestServer()
	alice := ts.addUser(t, "alice")
	bob := ts.addUser(t, "bob")

	ts.viewer = alice.ID
	w := ts.do(t, http.MethodPost, "/api/messages",
		gin.H{"receiverId": bob.ID.Hex(), "text": "hey bob"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/messages",
		gin.H{"receiverId": primitive.NewObjectID().Hex(), "text": "into the void"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	ts.viewer = bob.ID
	w = ts.do(t, http.MethodGet, "/api/messages/unread-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var unread struct {
		Count int64 `json:"count"`
	}
	decode(t, w, &unread)
	assert.Equal(t, int64(1), unread.Count)

	w = ts.do(t, http.MethodGet, "/api/messages/conversations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var conversations []model.Conversation
	decode(t, w, &conversations)
	require.Len(t, conversations, 1)
	assert.Equal(t, "alice", conversations[0].User.Username)
	assert.Equal(t, 1, conversations[0].UnreadCount)
	require.NotNil(t, conversations[0].LastMessage)
	assert.Equal(t, "hey bob", conversations[0].LastMessage.Text)

	// Opening the thread marks it read.
	w = ts.do(t, http.MethodGet, "/api/messages/"+alice.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var thread []model.Message
	decode(t, w, &thread)
	require.Len(t, thread, 1)
	assert.Equal(t, "hey bob", thread[0].Text)

	w = ts.do(t, http.MethodGet, "/api/messages/unread-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &unread)
	assert.Equal(t, int64(0), unread.Count)
}

func TestStoryEndpoints(t *testing.T) {
	ts := newTestServer()
	alice := ts.addUser(t, "alice")
	ts.viewer = alice.ID

	w := ts.doForm(t, http.MethodPost, "/api/stories", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.doForm(t, http.MethodPost, "/api/stories", nil, "image")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var story model.Story
	decode(t, w, &story)

	w = ts.do(t, http.MethodGet, "/api/stories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var groups []model.StoryGroup
	decode(t, w, &groups)
	require.Len(t, groups, 1)
	assert.Equal(t, "alice", groups[0].User.Username)
	require.Len(t, groups[0].Stories, 1)

	// Only the owner can delete.
	bob := ts.addUser(t, "bob")
	ts.viewer = bob.ID
	w = ts.do(t, http.MethodDelete, "/api/stories/"+story.ID.Hex(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	ts.viewer = alice.ID
	w = ts.do(t, http.MethodDelete, "/api/stories/"+story.ID.Hex(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCommentEndpoints(t *testing.T) {
	ts := newTestServer()
	alice := ts.addUser(t, "alice")
	bob := ts.addUser(t, "bob")
	ts.viewer = alice.ID

	w := ts.doForm(t, http.MethodPost, "/api/posts", map[string]string{"text": "discuss"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var post model.Post
	decode(t, w, &post)

	ts.viewer = bob.ID
	w = ts.do(t, http.MethodPost, "/api/comments/"+post.ID.Hex(), gin.H{"text": "first"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var comment model.Comment
	decode(t, w, &comment)

	w = ts.do(t, http.MethodPost, "/api/comments/"+post.ID.Hex(), gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/comments/"+post.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var comments []model.Comment
	decode(t, w, &comments)
	require.Len(t, comments, 1)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "bob", comments[0].Author.Username)

	ts.viewer = alice.ID
	w = ts.do(t, http.MethodDelete, "/api/comments/"+comment.ID.Hex(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	ts.viewer = bob.ID
	w = ts.do(t, http.MethodDelete, "/api/comments/"+comment.ID.Hex(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	ts := newTestServer()
	alice := ts.addUser(t, "alice")
	ts.viewer = alice.ID

	w := ts.do(t, http.MethodGet, "/api/users/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/users/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
