package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/postline/config"
	jwtmw "github.com/tech-arch1tect/postline/middleware/jwt"
	"github.com/tech-arch1tect/postline/middleware/jwtshared"
	"github.com/tech-arch1tect/postline/openapi"
	"github.com/tech-arch1tect/postline/server"
	"github.com/tech-arch1tect/postline/services/comments"
	"github.com/tech-arch1tect/postline/services/jwt"
	"github.com/tech-arch1tect/postline/services/logging"
	"github.com/tech-arch1tect/postline/services/metrics"
	"github.com/tech-arch1tect/postline/services/posts"
	"github.com/tech-arch1tect/postline/services/session"
	"github.com/tech-arch1tect/postline/services/users"
	"go.uber.org/fx"
)

type RouteParams struct {
	fx.In

	Config   *config.Config
	Server   *server.Server
	Auth     *AuthHandler
	Posts    *PostHandler
	Comments *CommentHandler
	JWT      *jwt.Service
	Users    *users.Service
	Metrics  *metrics.Service `optional:"true"`
	Docs     *openapi.OpenAPI
	Logger   *logging.Service `optional:"true"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// RegisterRoutes mounts the API on the server and documents every route.
func RegisterRoutes(p RouteParams) {
	requireJWT := jwtmw.RequireJWTWithConfig(jwtmw.Config{
		Verifier: p.JWT,
		Metrics:  p.Metrics,
		Logger:   p.Logger,
	})
	requireUser := jwtshared.RequireUser(p.Users)

	p.Server.Get("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
	})

	auth := p.Server.Group("/auth")
	auth.POST("/register", p.Auth.Register)
	auth.POST("/login", p.Auth.Login)
	auth.POST("/refresh-token", p.Auth.Refresh)
	auth.POST("/logout", p.Auth.Logout)
	auth.GET("/me", p.Auth.Me, requireJWT, requireUser)
	auth.DELETE("/account", p.Auth.DeleteAccount, requireJWT, requireUser)

	post := p.Server.Group("/post")
	post.GET("", p.Posts.List)
	post.GET("/:id", p.Posts.Get)
	post.POST("", p.Posts.Create, requireJWT)
	post.PUT("/:id", p.Posts.Update, requireJWT)
	post.DELETE("/:id", p.Posts.Delete, requireJWT)

	comment := p.Server.Group("/comment")
	comment.POST("/post/:postId", p.Comments.Create, requireJWT)
	comment.GET("/post/:postId", p.Comments.ListByPost)
	comment.GET("/:commentId", p.Comments.Get)
	comment.PUT("/:commentId", p.Comments.Update, requireJWT)
	comment.DELETE("/:commentId", p.Comments.Delete, requireJWT)

	if p.Metrics != nil && p.Config.Metrics.Enabled {
		p.Server.Get(p.Config.Metrics.Path, echo.WrapHandler(p.Metrics.Handler()))
	}

	if p.Config.OpenAPI.Enabled {
		describeRoutes(p.Docs)
		p.Server.Get("/docs/openapi.json", p.Docs.JSONHandler())
		p.Server.Get("/docs/openapi.yaml", p.Docs.YAMLHandler())
	}
}

func describeRoutes(docs *openapi.OpenAPI) {
	errBody := ErrorResponse{}

	docs.Tag("Auth", "Accounts and sessions").
		Tag("Posts", "Posts").
		Tag("Comments", "Comments on posts").
		BearerAuth("Access token from login, register or refresh-token")

	docs.Document(http.MethodGet, "/health").Summary("Liveness check").
		Response(http.StatusOK, HealthResponse{}, "").Build()

	docs.Document(http.MethodPost, "/auth/register").Summary("Create an account and open a session").Tags("Auth").
		Body(RegisterRequest{}, "New account").
		Response(http.StatusCreated, RegisterResponse{}, "Account created").
		Response(http.StatusUnauthorized, errBody, "Invalid input or identity in use").Build()
	docs.Document(http.MethodPost, "/auth/login").Summary("Open a session").Tags("Auth").
		Body(LoginRequest{}, "Credentials").
		Response(http.StatusOK, TokenResponse{}, "Token pair").
		Response(http.StatusBadRequest, errBody, "Login failed").Build()
	docs.Document(http.MethodPost, "/auth/refresh-token").Summary("Rotate a refresh token").Tags("Auth").
		Body(RefreshRequest{}, "Current refresh token").
		Response(http.StatusOK, TokenResponse{}, "New token pair").
		Response(http.StatusUnauthorized, errBody, "Invalid refresh token").Build()
	docs.Document(http.MethodPost, "/auth/logout").Summary("End a session").Tags("Auth").
		Body(RefreshRequest{}, "Refresh token of the session").
		Response(http.StatusOK, MessageResponse{}, "Logged out").
		Response(http.StatusUnauthorized, errBody, "Invalid refresh token").Build()
	docs.Document(http.MethodGet, "/auth/me").Summary("Current account").Tags("Auth").Security().
		Response(http.StatusOK, ProfileResponse{}, "").
		Response(http.StatusUnauthorized, errBody, "Authentication failed").Build()
	docs.Document(http.MethodDelete, "/auth/account").Summary("Delete the current account").Tags("Auth").Security().
		Response(http.StatusOK, MessageResponse{}, "").
		Response(http.StatusUnauthorized, errBody, "Authentication failed").Build()

	docs.Document(http.MethodGet, "/post").Summary("List posts").Tags("Posts").
		QueryParam("senderID", "Only posts of this sender").
		Response(http.StatusOK, []posts.Post{}, "").Build()
	docs.Document(http.MethodGet, "/post/:id").Summary("Get a post").Tags("Posts").PathParam("id", "Post ID").
		Response(http.StatusOK, posts.Post{}, "").
		Response(http.StatusNotFound, errBody, msgPostNotFound).Build()
	docs.Document(http.MethodPost, "/post").Summary("Create a post").Tags("Posts").Security().
		Body(posts.Input{}, "").
		Response(http.StatusCreated, posts.Post{}, "").
		Response(http.StatusUnauthorized, errBody, "Authentication failed").Build()
	docs.Document(http.MethodPut, "/post/:id").Summary("Update an own post").Tags("Posts").Security().
		PathParam("id", "Post ID").
		Body(posts.Input{}, "").
		Response(http.StatusOK, posts.Post{}, "").
		Response(http.StatusForbidden, errBody, msgPostUpdateForbidden).
		Response(http.StatusNotFound, errBody, msgPostNotFound).Build()
	docs.Document(http.MethodDelete, "/post/:id").Summary("Delete an own post").Tags("Posts").Security().
		PathParam("id", "Post ID").
		Response(http.StatusOK, posts.Post{}, "").
		Response(http.StatusForbidden, errBody, msgPostDeleteForbidden).
		Response(http.StatusNotFound, errBody, msgPostNotFound).Build()

	docs.Document(http.MethodPost, "/comment/post/:postId").Summary("Comment on a post").Tags("Comments").Security().
		PathParam("postId", "Post ID").
		Body(comments.Input{}, "").
		Response(http.StatusCreated, comments.Comment{}, "").
		Response(http.StatusNotFound, errBody, msgPostNotFound).Build()
	docs.Document(http.MethodGet, "/comment/post/:postId").Summary("List comments of a post").Tags("Comments").
		PathParam("postId", "Post ID").
		Response(http.StatusOK, []comments.Comment{}, "").Build()
	docs.Document(http.MethodGet, "/comment/:commentId").Summary("Get a comment").Tags("Comments").
		PathParam("commentId", "Comment ID").
		Response(http.StatusOK, comments.Comment{}, "").
		Response(http.StatusNotFound, errBody, msgCommentNotFound).Build()
	docs.Document(http.MethodPut, "/comment/:commentId").Summary("Update an own comment").Tags("Comments").Security().
		PathParam("commentId", "Comment ID").
		Body(comments.Input{}, "").
		Response(http.StatusOK, comments.Comment{}, "").
		Response(http.StatusForbidden, errBody, msgCommentUpdateForbidden).
		Response(http.StatusNotFound, errBody, msgCommentNotFound).Build()
	docs.Document(http.MethodDelete, "/comment/:commentId").Summary("Delete an own comment").Tags("Comments").Security().
		PathParam("commentId", "Comment ID").
		Response(http.StatusOK, MessageResponse{}, "").
		Response(http.StatusForbidden, errBody, msgCommentDeleteForbidden).
		Response(http.StatusNotFound, errBody, msgCommentNotFound).Build()
}

func ProvideAuthHandler(sessions *session.Service, logger *logging.Service) *AuthHandler {
	return NewAuthHandler(sessions, logger.Named("handlers"))
}

var Options = fx.Options(
	fx.Provide(
		ProvideAuthHandler,
		NewPostHandler,
		NewCommentHandler,
	),
	fx.Invoke(RegisterRoutes),
)
