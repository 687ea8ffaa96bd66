// Package policy holds the pure authorization decisions. Every function
// answers "may this identity do this to this resource" and nothing else;
// existence checks and error mapping live in the services, which evaluate
// identity, then existence, then these rules, in that order.
package policy

import (
	"inkwell/internal/domain/model"
)

// CanCreatePost: only users holding the AUTHOR role publish.
func CanCreatePost(identity *model.User) bool {
	return identity != nil && identity.Role == model.RoleAuthor
}

// CanModifyPost covers update and delete: an AUTHOR may touch their own
// posts only.
func CanModifyPost(identity *model.User, post *model.Post) bool {
	return identity != nil && identity.Role == model.RoleAuthor && post.AuthorID == identity.ID
}

// CanViewPost: published posts are public; drafts are visible to any AUTHOR.
func CanViewPost(identity *model.User, post *model.Post) bool {
	if post.Published {
		return true
	}
	return identity != nil && identity.Role == model.RoleAuthor
}

// CanDeleteComment: the comment's author, or any AUTHOR, regardless of who
// owns the post.
func CanDeleteComment(identity *model.User, comment *model.Comment) bool {
	if identity == nil {
		return false
	}
	return comment.AuthorID == identity.ID || identity.Role == model.RoleAuthor
}
