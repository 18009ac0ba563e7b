package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vybr/booking-api/internal/api/handler/v1/request"
	"github.com/vybr/booking-api/internal/api/handler/v1/response"
	"github.com/vybr/booking-api/internal/domain"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	SaveMusicProfile(ctx context.Context, profile domain.MusicProfile) (domain.MusicProfile, error)
	GetMusicProfile(ctx context.Context, userID uint) (domain.MusicProfile, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleGetMe godoc
// @Summary      Get the authenticated user
// @Tags         users
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /users/me [get]
// @Security BearerAuth
func (h *UserHandler) HandleGetMe(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, err := h.svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetMe -> h.svc.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleSaveMusicProfile godoc
// @Summary      Save the authenticated user's music profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      request.SaveMusicProfileRequest  true  "request body"
// @Success      200      {object}  domain.MusicProfile
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /users/me/music-profile [put]
// @Security BearerAuth
func (h *UserHandler) HandleSaveMusicProfile(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SaveMusicProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	profile, err := h.svc.SaveMusicProfile(ctx.Request.Context(), domain.MusicProfile{
		UserID:          userID,
		FavoriteArtists: req.FavoriteArtists,
		FavoriteGenres:  req.FavoriteGenres,
		FavoriteSongs:   req.FavoriteSongs,
		TopArtists:      req.TopArtists,
		TopGenres:       req.TopGenres,
		TopSongs:        req.TopSongs,
		MusicTaste:      req.MusicTaste,
		DreamConcert:    req.DreamConcert,
		GoToSong:        req.GoToSong,
		FirstSong:       req.FirstSong,
		MustListenAlbum: req.MustListenAlbum,
		FavoriteAlbums:  req.FavoriteAlbums,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleSaveMusicProfile -> h.svc.SaveMusicProfile -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, profile)
}

// HandleGetMusicProfile godoc
// @Summary      Get the authenticated user's music profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  domain.MusicProfile
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /users/me/music-profile [get]
// @Security BearerAuth
func (h *UserHandler) HandleGetMusicProfile(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	profile, err := h.svc.GetMusicProfile(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetMusicProfile -> h.svc.GetMusicProfile -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, profile)
}
