package http

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"station-player/internal/domain"
	"station-player/internal/repository"
	"station-player/internal/service"
	"station-player/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth      service.AuthService
	users     service.UserService
	stations  service.StationService
	hub       WSHub
	storage   storage.Service
	guestMode bool
	logger    *logrus.Logger
}

// WSHub upgrades notification subscribers.
type WSHub interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
}

func NewHandler(auth service.AuthService, users service.UserService, stations service.StationService, hub WSHub, store storage.Service, guestMode bool, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		auth:      auth,
		users:     users,
		stations:  stations,
		hub:       hub,
		storage:   store,
		guestMode: guestMode,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestLogger(h.logger))
	router.Use(h.identityMiddleware())

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.signup)
			auth.POST("/login", h.login)
			auth.POST("/google", h.loginWithGoogle)
			auth.POST("/logout", h.logout)
		}

		station := api.Group("/station")
		{
			station.GET("", h.getStations)
			station.GET("/:id", h.getStationByID)
			station.POST("", h.requireAuth(), h.addStation)
			station.PUT("/:id", h.requireAuth(), h.updateStation)
			station.DELETE("/:id", h.requireAuth(), h.removeStation)
			station.POST("/:id/like", h.requireAuth(), h.likeStation)
			station.DELETE("/:id/like", h.requireAuth(), h.unlikeStation)
			station.POST("/:id/song", h.requireAuth(), h.addSong)
			station.DELETE("/:id/song/:songId", h.requireAuth(), h.removeSong)
		}

		user := api.Group("/user")
		{
			user.GET("", h.getUsers)
			user.GET("/stations", h.requireAuth(), h.getLikedStations)
			user.GET("/:id", h.getUser)
			user.PUT("/:id", h.requireAuth(), h.updateUser)
			user.DELETE("/:id", h.requireAuth(), h.requireAdmin(), h.deleteUser)
			user.POST("/song", h.requireAuth(), h.addLikedSong)
			user.DELETE("/song/:songId", h.requireAuth(), h.removeLikedSong)
			user.POST("/station", h.requireAuth(), h.addLikedStation)
			user.PUT("/station", h.requireAuth(), h.updateLikedStation)
			user.DELETE("/station/:stationId", h.requireAuth(), h.removeLikedStation)
		}

		if h.hub != nil {
			api.GET("/ws", h.serveWS)
		}
		if h.storage != nil {
			api.POST("/upload", h.requireAuth(), h.uploadCover)
		}
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

// --- auth ---

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type googleLoginRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email" binding:"required"`
	ImgURL string `json:"imgUrl"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), req.Name, req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWithToken(c, user)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWithToken(c, user)
}

func (h *Handler) loginWithGoogle(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	user, err := h.auth.LoginWithGoogle(c.Request.Context(), req.Name, req.Email, req.ImgURL)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWithToken(c, user)
}

func (h *Handler) logout(c *gin.Context) {
	c.SetCookie(loginTokenCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"msg": "Logged out successfully"})
}

func (h *Handler) respondWithToken(c *gin.Context, user *domain.User) {
	token, err := h.auth.IssueToken(user)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.SetCookie(loginTokenCookie, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// --- stations ---

func (h *Handler) getStations(c *gin.Context) {
	filter := repository.StationFilter{
		Txt:         c.Query("txt"),
		Genre:       c.Query("genre"),
		CreatedByID: c.Query("createdById"),
	}
	stations, err := h.stations.Query(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stations)
}

func (h *Handler) getStationByID(c *gin.Context) {
	station, err := h.stations.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, station)
}

func (h *Handler) addStation(c *gin.Context) {
	var station domain.Station
	if err := c.ShouldBindJSON(&station); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	added, err := h.stations.Add(c.Request.Context(), station)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, added)
}

func (h *Handler) updateStation(c *gin.Context) {
	var station domain.Station
	if err := c.ShouldBindJSON(&station); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	station.ID = c.Param("id")

	updated, err := h.stations.Update(c.Request.Context(), station)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) removeStation(c *gin.Context) {
	if err := h.stations.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Deleted successfully"})
}

func (h *Handler) likeStation(c *gin.Context) {
	ctx := c.Request.Context()
	station, err := h.stations.GetByID(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	user, err := h.users.AddLikedStation(ctx, *station)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) unlikeStation(c *gin.Context) {
	user, err := h.users.RemoveLikedStation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) addSong(c *gin.Context) {
	var song domain.Song
	if err := c.ShouldBindJSON(&song); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	station, err := h.stations.AddSong(c.Request.Context(), c.Param("id"), song)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, station)
}

func (h *Handler) removeSong(c *gin.Context) {
	station, err := h.stations.RemoveSong(c.Request.Context(), c.Param("id"), c.Param("songId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, station)
}

// --- users ---

func (h *Handler) getUsers(c *gin.Context) {
	users, err := h.users.Query(c.Request.Context(), repository.UserFilter{Txt: c.Query("txt")})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateUser(c *gin.Context) {
	var user domain.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	user.ID = c.Param("id")

	updated, err := h.users.Update(c.Request.Context(), &user)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.users.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Deleted successfully"})
}

func (h *Handler) addLikedSong(c *gin.Context) {
	var song domain.Song
	if err := c.ShouldBindJSON(&song); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	user, err := h.users.AddLikedSong(c.Request.Context(), song)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) removeLikedSong(c *gin.Context) {
	user, err := h.users.RemoveLikedSong(c.Request.Context(), c.Param("songId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) getLikedStations(c *gin.Context) {
	sort := repository.LikedStationSort(c.DefaultQuery("sortBy", string(repository.SortByLikedAt)))
	stations, err := h.users.LikedStations(c.Request.Context(), sort)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stations)
}

func (h *Handler) addLikedStation(c *gin.Context) {
	var station domain.Station
	if err := c.ShouldBindJSON(&station); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	user, err := h.users.AddLikedStation(c.Request.Context(), station)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateLikedStation(c *gin.Context) {
	var snap domain.LikedStation
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	user, err := h.users.UpdateLikedStation(c.Request.Context(), snap)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) removeLikedStation(c *gin.Context) {
	user, err := h.users.RemoveLikedStation(c.Request.Context(), c.Param("stationId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// --- misc ---

func (h *Handler) serveWS(c *gin.Context) {
	if err := h.hub.ServeWS(c.Writer, c.Request); err != nil {
		h.logger.Warnf("ws upgrade: %v", err)
	}
}

func (h *Handler) uploadCover(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "missing file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	defer file.Close()

	key := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")
	if _, err := h.storage.UploadImage(c.Request.Context(), key, file, contentType); err != nil {
		h.respondError(c, err)
		return
	}

	url, err := h.storage.GetObjectURL(c.Request.Context(), key, 24*time.Hour)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "key": key})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"err": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"err": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"err": err.Error()})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"err": err.Error()})
	default:
		h.logger.Errorf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
	}
}
