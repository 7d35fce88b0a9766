// Package server wires the REST surface: one file per resource, every
// handler a thin layer over the store.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/wrenhq/wren/store"
)

// Server bundles the handlers with the store they run against.
type Server struct {
	store store.Store
}

func NewServer(s store.Store) *Server {
	return &Server{store: s}
}

// RegisterRoutes mounts the API under /api. The auth middleware is passed
// in so tests can substitute one that injects a fixed identity.
func (s *Server) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.Register)
	authGroup.POST("/login", s.Login)

	protected := api.Group("")
	protected.Use(auth)

	users := protected.Group("/users")
	users.GET("/search", s.SearchUsers)
	users.GET("/suggested", s.GetSuggestedUsers)
	users.PUT("/profile", s.UpdateProfile)
	users.GET("/:id", s.GetProfile)
	users.POST("/:id/follow", s.FollowUser)
	users.DELETE("/:id/follow", s.UnfollowUser)

	posts := protected.Group("/posts")
	posts.POST("", s.CreatePost)
	posts.GET("/feed", s.GetFeed)
	posts.GET("/explore", s.GetExploreFeed)
	posts.GET("/user/:userId", s.GetUserPosts)
	posts.DELETE("/:id", s.DeletePost)
	posts.POST("/:id/like", s.LikePost)
	posts.POST("/:id/react", s.ReactToPost)
	posts.DELETE("/:id/react", s.RemoveReaction)
	posts.POST("/:id/repost", s.RepostPost)

	comments := protected.Group("/comments")
	comments.POST("/:postId", s.CreateComment)
	comments.GET("/:postId", s.GetComments)
	comments.DELETE("/:id", s.DeleteComment)

	messages := protected.Group("/messages")
	messages.POST("", s.SendMessage)
	messages.GET("/conversations", s.GetConversations)
	messages.GET("/unread-count", s.GetUnreadCount)
	messages.GET("/:userId", s.GetConversation)

	stories := protected.Group("/stories")
	stories.POST("", s.CreateStory)
	stories.GET("", s.GetStories)
	stories.DELETE("/:id", s.DeleteStory)
}
