package server

import (
	"errors"
	"net/http"
	"time"

	"CupBack/cache"
	"CupBack/core/identity"
	"CupBack/logger"
	"CupBack/model"
	"CupBack/storage"

	"github.com/gorilla/mux"
)

// maxPostImageSize caps board image uploads at 10 MiB.
const maxPostImageSize = 10 << 20

// ListPostsHandler returns all board posts, newest first.
func (h *APIHandler) ListPostsHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postRepo.ListPosts()
	if err != nil {
		logger.Error("[Posts] failed to list posts", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// CreatePostHandler creates a board post from a multipart form: title,
// content, and an optional image part uploaded to object storage.
func (h *APIHandler) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	authID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Login required")
		return
	}

	if err := r.ParseMultipartForm(maxPostImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	title := r.FormValue("title")
	content := r.FormValue("content")
	if title == "" || content == "" {
		writeError(w, http.StatusBadRequest, "Title and content are required")
		return
	}

	// Resolve authorship through the identity resolver so the post is keyed
	// and signed the same way the user's other records are.
	writerID := authID
	writerName := "unknown user"
	user, err := h.resolver.ResolveUser(authID, GetEmailFromContext(r.Context()))
	if err != nil {
		if !errors.Is(err, identity.ErrIdentityUnresolved) {
			logger.Error("[Posts] identity lookup failed", logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
			return
		}
		logger.Warn("[Posts] identity unresolved, posting as anonymous",
			logger.String("authId", authID))
	} else {
		writerID = user.ID
		writerName = user.DisplayName()
	}

	var imageURL string
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		imageURL, err = storage.UploadPostImage(r.Context(), h.cfg, file, header.Size,
			header.Filename, header.Header.Get("Content-Type"))
		if err != nil {
			logger.Error("[Posts] image upload failed", logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Failed to upload image")
			return
		}
	}

	post := model.NewPost(title, content, imageURL, writerName, writerID, time.Now())
	if err := h.postRepo.CreatePost(post); err != nil {
		logger.Error("[Posts] failed to create post", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to create post")
		return
	}

	cache.NotifyChanged(r.Context(), cache.CollectionPosts)
	logger.Info("[Posts] post created",
		logger.String("postId", post.ID),
		logger.String("writerId", writerID))
	writeJSON(w, http.StatusCreated, post)
}

// ToggleLikeHandler toggles the authenticated user's like on a post. The
// read-modify-write is not atomic against a concurrent toggle on the same
// post; accepted limitation of the storage layer.
func (h *APIHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	authID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Login required")
		return
	}

	postID := mux.Vars(r)["id"]
	if postID == "" {
		writeError(w, http.StatusBadRequest, "Post id is required")
		return
	}

	userID, err := h.resolver.Resolve(authID, GetEmailFromContext(r.Context()))
	if err != nil {
		if !errors.Is(err, identity.ErrIdentityUnresolved) {
			logger.Error("[Posts] identity lookup failed", logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
			return
		}
		userID = authID
	}

	post, err := h.postRepo.GetPostByID(postID)
	if err != nil {
		logger.Error("[Posts] failed to load post",
			logger.String("postId", postID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	liked := post.ToggleLike(userID)
	if err := h.postRepo.UpdateLikes(post.ID, post.Likes); err != nil {
		logger.Error("[Posts] failed to update likes",
			logger.String("postId", postID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Temporary failure, please try again")
		return
	}

	cache.NotifyChanged(r.Context(), cache.CollectionPosts)
	logger.Info("[Posts] like toggled",
		logger.String("postId", postID),
		logger.String("userId", userID),
		logger.Bool("liked", liked))
	writeJSON(w, http.StatusOK, post)
}
