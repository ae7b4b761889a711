package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	config "example.com/microblog/internal/init"
	"example.com/microblog/internal/models"
	"example.com/microblog/internal/service"
	"example.com/microblog/internal/store"
	"github.com/golang-jwt/jwt/v5"
)

// --- Shared helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseID reads a path wildcard as an int64. A non-numeric id is a
// client error on every operation, deleteUser included.
func parseID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// --- User handlers ---

// createUserHandler handles POST /user.
// Expects JSON body: {"username": "...", "firstName": "...", "lastName": "..."}
// Returns the created user plus a signed token for the protected routes.
func (s *Server) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var body models.User

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logg.Error("http/user", "Invalid request body", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(body.Username) == 0 || len(body.Username) > 50 {
		logg.Info("http/user", "Invalid username length")
		http.Error(w, "username must be 1-50 characters", http.StatusBadRequest)
		return
	}

	user, err := s.users.CreateUser(r.Context(), body)
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			logg.Info("http/user", "Username already exists")
			http.Error(w, "username already taken", http.StatusConflict)
			return
		}
		logg.Error("http/user", "Failed to create user", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	ttl := 24 * time.Hour
	if cfg := config.Get(); cfg != nil {
		ttl = cfg.JWTTTL
	}
	secret := []byte(os.Getenv("JWT_SECRET"))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": strconv.FormatInt(user.ID, 10),
		"exp":     time.Now().Add(ttl).Unix(),
	})
	tokenStr, err := token.SignedString(secret)
	if err != nil {
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	logg.Info("http/user", "User created with id="+strconv.FormatInt(user.ID, 10))

	resp := struct {
		models.User
		Token string `json:"token"`
	}{User: user, Token: tokenStr}
	writeJSON(w, http.StatusCreated, resp)
}

// deleteUserHandler handles DELETE /user/{userId}. The store clears
// the user's follow edges and the row in one transaction; cascades
// take the owned tweets and replies.
func (s *Server) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userId")
	if err != nil {
		logg.Info("http/user", "Bad userId parameter")
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := s.users.DeleteUser(r.Context(), userID); err != nil {
		logg.Error("http/user", "Failed to delete user", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logg.Info("http/user", "User deleted with follow edges, tweets and replies")
	w.WriteHeader(http.StatusNoContent)
}

// getUsersHandler handles GET /user. An empty table yields 200 with
// an empty array, the uniform list convention.
func (s *Server) getUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.GetUsers(r.Context())
	if err != nil {
		logg.Error("http/user", "Failed to list users", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	logg.Info("http/user", "Listed "+strconv.Itoa(len(users))+" users")
	writeJSON(w, http.StatusOK, users)
}

// followHandler handles POST /user/follow/{followerId}/{followedId}.
func (s *Server) followHandler(w http.ResponseWriter, r *http.Request) {
	followerID, err := parseID(r, "followerId")
	if err != nil {
		http.Error(w, "invalid follower id", http.StatusBadRequest)
		return
	}
	followedID, err := parseID(r, "followedId")
	if err != nil {
		http.Error(w, "invalid followed id", http.StatusBadRequest)
		return
	}

	if err := s.users.FollowUser(r.Context(), followerID, followedID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			logg.Info("http/follow", "Self-follow rejected")
			http.Error(w, "cannot follow yourself", http.StatusUnprocessableEntity)
		case errors.Is(err, service.ErrParticipantNotFound):
			logg.Info("http/follow", "Follow participant not found")
			http.Error(w, "follow participant not found", http.StatusForbidden)
		default:
			logg.Error("http/follow", "Failed to create follow relationship", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	logg.Info("http/follow", "Follow relationship created")
	w.WriteHeader(http.StatusOK)
}

// unfollowHandler handles POST /user/unfollow/{fromUser}/{toUserId}.
// Removing an absent edge is 404; unresolved participants are 403.
func (s *Server) unfollowHandler(w http.ResponseWriter, r *http.Request) {
	followerID, err := parseID(r, "fromUser")
	if err != nil {
		http.Error(w, "invalid follower id", http.StatusBadRequest)
		return
	}
	followedID, err := parseID(r, "toUserId")
	if err != nil {
		http.Error(w, "invalid followed id", http.StatusBadRequest)
		return
	}

	if err := s.users.UnfollowUser(r.Context(), followerID, followedID); err != nil {
		switch {
		case errors.Is(err, service.ErrParticipantNotFound):
			logg.Info("http/follow", "Unfollow participant not found")
			http.Error(w, "follow participant not found", http.StatusForbidden)
		case errors.Is(err, service.ErrNotFollowing):
			logg.Info("http/follow", "Unfollow of absent relation")
			http.Error(w, "follow relation not found", http.StatusNotFound)
		default:
			logg.Error("http/follow", "Failed to remove follow relationship", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	logg.Info("http/follow", "Follow relationship removed")
	w.WriteHeader(http.StatusOK)
}

// getFollowersHandler handles GET /user/followers/{userId}.
func (s *Server) getFollowersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userId")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	followers, err := s.users.GetFollowers(r.Context(), userID)
	if err != nil {
		logg.Error("http/user", "Failed to get followers", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if followers == nil {
		followers = []models.User{}
	}

	writeJSON(w, http.StatusOK, followers)
}
