package dto

import "github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"

type MessageResponse struct {
	Message string `json:"message"`
}

type PostView struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type UserWithPostsResponse struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Posts    []PostView `json:"posts"`
}

// NewUserWithPostsResponse never returns a nil Posts slice, so it encodes as [].
func NewUserWithPostsResponse(res account.UserWithPosts) UserWithPostsResponse {
	posts := make([]PostView, 0, len(res.Posts))
	for _, p := range res.Posts {
		posts = append(posts, PostView{Title: p.Title, Content: p.Content})
	}
	return UserWithPostsResponse{
		Username: res.User.Username,
		Email:    res.User.Email,
		Posts:    posts,
	}
}

type StatusResponse struct {
	Status string `json:"status"`
}
