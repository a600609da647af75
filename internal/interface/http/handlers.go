package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/application/command"
	"github.com/Trevictus/tabletopmastering-sub000/internal/application/query"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/game"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/group"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/match"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/player"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/ranking"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
	"github.com/Trevictus/tabletopmastering-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROOT & HEALTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot handles the root endpoint.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "The requested resource was not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "tabletopmastering-api",
		"version": "1.0.0",
		"status":  "operational",
	})
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"uptime": s.Uptime().String(),
		})
		return
	}

	status := s.deps.HealthChecker.Check(r.Context())

	httpStatus := http.StatusOK
	if !status.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, status)
}

// handleReady handles readiness probe requests.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "Service dependencies are not ready")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles liveness probe requests.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// handleRegister creates a new player account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RegisterPlayer.Handle(r.Context(), command.RegisterPlayerCommand{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin authenticates a player and issues a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.AuthenticatePlayer.Handle(r.Context(), command.AuthenticatePlayerCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// PLAYER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetPlayer returns a player profile. Email is included only when
// the caller requests their own profile.
func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetPlayer.Handle(r.Context(), query.GetPlayerQuery{
		PlayerID: r.PathValue("id"),
		CallerID: getPlayerID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type updatePlayerRequest struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

// handleUpdatePlayer edits the caller's own profile.
func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	var req updatePlayerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.UpdatePlayer.Handle(r.Context(), command.UpdatePlayerCommand{
		PlayerID:    r.PathValue("id"),
		CallerID:    getPlayerID(r.Context()),
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleDeactivatePlayer soft-deletes the caller's own account.
func (s *Server) handleDeactivatePlayer(w http.ResponseWriter, r *http.Request) {
	err := s.deps.DeactivatePlayer.Handle(r.Context(), command.DeactivatePlayerCommand{
		PlayerID: r.PathValue("id"),
		CallerID: getPlayerID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// ══════════════════════════════════════════════════════════════════════════════
// GROUP HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListGroups lists groups, optionally scoped to the caller.
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	q := query.ListGroupsQuery{
		Limit:  getQueryParamInt(r, "limit", 0),
		Offset: getQueryParamInt(r, "offset", 0),
	}
	if getQueryParam(r, "mine", "") == "true" {
		q.PlayerID = getPlayerID(r.Context())
	}

	result, err := s.deps.ListGroups.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// handleCreateGroup creates a group owned by the caller.
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.CreateGroup.Handle(r.Context(), command.CreateGroupCommand{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     getPlayerID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleGetGroup returns the group card.
func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetGroup.Handle(r.Context(), query.GetGroupQuery{
		GroupID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleJoinGroup adds the caller to a group.
func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.JoinGroup.Handle(r.Context(), command.JoinGroupCommand{
		GroupID:  r.PathValue("id"),
		PlayerID: getPlayerID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleLeaveGroup removes the caller from a group.
func (s *Server) handleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.LeaveGroup.Handle(r.Context(), command.LeaveGroupCommand{
		GroupID:  r.PathValue("id"),
		PlayerID: getPlayerID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// GAME CATALOG HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListGames lists the group catalog with optional name search.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.ListGames.Handle(r.Context(), query.ListGamesQuery{
		GroupID: r.PathValue("id"),
		Search:  getQueryParam(r, "search", ""),
		Limit:   getQueryParamInt(r, "limit", 0),
		Offset:  getQueryParamInt(r, "offset", 0),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type addGameRequest struct {
	Name            string `json:"name,omitempty"`
	Description     string `json:"description,omitempty"`
	ExternalID      int64  `json:"external_id,omitempty"`
	MinPlayers      int    `json:"min_players,omitempty"`
	MaxPlayers      int    `json:"max_players,omitempty"`
	PlayTimeMinutes int    `json:"play_time_minutes,omitempty"`
	YearPublished   int    `json:"year_published,omitempty"`
}

// handleAddGame adds a game to the group catalog.
func (s *Server) handleAddGame(w http.ResponseWriter, r *http.Request) {
	var req addGameRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.AddGame.Handle(r.Context(), command.AddGameCommand{
		GroupID:         r.PathValue("id"),
		PlayerID:        getPlayerID(r.Context()),
		Name:            req.Name,
		Description:     req.Description,
		ExternalID:      req.ExternalID,
		MinPlayers:      req.MinPlayers,
		MaxPlayers:      req.MaxPlayers,
		PlayTimeMinutes: req.PlayTimeMinutes,
		YearPublished:   req.YearPublished,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleGetGame returns a single catalog entry.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetGame.Handle(r.Context(), query.GetGameQuery{
		GameID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleSyncGame refreshes a game from the external catalog.
func (s *Server) handleSyncGame(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.SyncGame.Handle(r.Context(), command.SyncGameCommand{
		GameID:    r.PathValue("id"),
		ForceSync: getQueryParam(r, "force", "") == "true",
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleSearchCatalog searches the external game catalog.
func (s *Server) handleSearchCatalog(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.SearchCatalog.Handle(r.Context(), query.SearchCatalogQuery{
		Query: getQueryParam(r, "q", ""),
		Limit: getQueryParamInt(r, "limit", 0),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListMatches lists group matches with optional filters.
func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	q := query.ListMatchesQuery{
		GroupID: r.PathValue("id"),
		Status:  getQueryParam(r, "status", ""),
		GameID:  getQueryParam(r, "game_id", ""),
		Limit:   getQueryParamInt(r, "limit", 0),
		Offset:  getQueryParamInt(r, "offset", 0),
	}
	if from := getQueryParam(r, "from", ""); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "Parameter 'from' must be RFC3339")
			return
		}
		q.From = t
	}
	if to := getQueryParam(r, "to", ""); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "Parameter 'to' must be RFC3339")
			return
		}
		q.To = t
	}

	result, err := s.deps.ListMatches.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type scheduleMatchRequest struct {
	GameID         string    `json:"game_id"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Location       string    `json:"location,omitempty"`
	ParticipantIDs []string  `json:"participant_ids,omitempty"`
}

// handleScheduleMatch plans a new match in a group.
func (s *Server) handleScheduleMatch(w http.ResponseWriter, r *http.Request) {
	var req scheduleMatchRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.ScheduleMatch.Handle(r.Context(), command.ScheduleMatchCommand{
		GroupID:        r.PathValue("id"),
		GameID:         req.GameID,
		CreatedBy:      getPlayerID(r.Context()),
		ScheduledAt:    req.ScheduledAt,
		Location:       req.Location,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type finishMatchRequest struct {
	Results []resultInput `json:"results"`
}

type resultInput struct {
	PlayerID string `json:"player_id"`
	Position int    `json:"position"`
	Score    *int   `json:"score,omitempty"`
}

// handleGetMatch returns a single match with its results.
func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetMatch.Handle(r.Context(), query.GetMatchQuery{
		MatchID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleFinishMatch records match results and awards points.
func (s *Server) handleFinishMatch(w http.ResponseWriter, r *http.Request) {
	var req finishMatchRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	results := make([]command.ResultInput, 0, len(req.Results))
	for _, in := range req.Results {
		score := 0
		if in.Score != nil {
			score = *in.Score
		}
		results = append(results, command.ResultInput{
			PlayerID: in.PlayerID,
			Position: in.Position,
			Score:    score,
		})
	}

	result, err := s.deps.FinishMatch.Handle(r.Context(), command.FinishMatchCommand{
		MatchID:    r.PathValue("id"),
		RecordedBy: getPlayerID(r.Context()),
		Results:    results,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleCancelMatch cancels a scheduled match.
func (s *Server) handleCancelMatch(w http.ResponseWriter, r *http.Request) {
	err := s.deps.CancelMatch.Handle(r.Context(), command.CancelMatchCommand{
		MatchID:     r.PathValue("id"),
		CancelledBy: getPlayerID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetGlobalRanking returns the cross-group leaderboard.
func (s *Server) handleGetGlobalRanking(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetGlobalRanking.Handle(r.Context(), query.GetGlobalRankingQuery{
		Limit:  getQueryParamInt(r, "limit", 0),
		Offset: getQueryParamInt(r, "offset", 0),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetRanking returns the group ranking.
func (s *Server) handleGetRanking(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetRanking.Handle(r.Context(), query.GetRankingQuery{
		GroupID: r.PathValue("id"),
		Limit:   getQueryParamInt(r, "limit", 0),
		Offset:  getQueryParamInt(r, "offset", 0),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetPlayerStats returns a single player's statistics in a group.
func (s *Server) handleGetPlayerStats(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetPlayerStats.Handle(r.Context(), query.GetPlayerStatsQuery{
		GroupID:  r.PathValue("id"),
		PlayerID: r.PathValue("playerID"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST / ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeBody decodes a JSON request body, writing a 400 on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

// writeDomainError maps an application or domain error to an HTTP status.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, command.ErrInvalidCredentials):
		writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")

	case errors.Is(err, shared.ErrNotFound),
		errors.Is(err, player.ErrPlayerNotFound),
		errors.Is(err, group.ErrGroupNotFound),
		errors.Is(err, game.ErrGameNotFound),
		errors.Is(err, match.ErrMatchNotFound),
		errors.Is(err, ranking.ErrStatsNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, shared.ErrAlreadyExists),
		errors.Is(err, player.ErrPlayerAlreadyExists),
		errors.Is(err, group.ErrGroupAlreadyExists),
		errors.Is(err, group.ErrAlreadyMember),
		errors.Is(err, game.ErrGameAlreadyExists),
		errors.Is(err, match.ErrAlreadyFinished),
		errors.Is(err, group.ErrLastAdmin):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())

	case errors.Is(err, group.ErrNotMember),
		errors.Is(err, group.ErrNotAdmin),
		errors.Is(err, match.ErrNotParticipant),
		errors.Is(err, player.ErrPlayerNotEnrolled),
		errors.Is(err, shared.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, "forbidden", err.Error())

	case errors.Is(err, shared.ErrExternalService),
		errors.Is(err, shared.ErrServiceUnavailable):
		writeJSONError(w, http.StatusBadGateway, "upstream_error", "External catalog is unavailable")

	case errors.Is(err, shared.ErrRateLimited):
		writeJSONError(w, http.StatusTooManyRequests, "rate_limited", err.Error())

	default:
		// Validation errors from commands and queries land here.
		if isValidationError(err) {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		s.logger.Error("unhandled request error",
			logger.Err(err),
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
	}
}

// isValidationError reports whether the error stems from bad input rather
// than an infrastructure failure.
func isValidationError(err error) bool {
	for _, target := range []error{
		shared.ErrValidation,
		shared.ErrInvalidInput,
		command.ErrPasswordTooShort,
		player.ErrInvalidEmail,
		player.ErrInvalidDisplayName,
		group.ErrInvalidName,
		game.ErrInvalidName,
		game.ErrInvalidPlayerRange,
		match.ErrScheduledInPast,
		match.ErrNotScheduled,
		match.ErrNoParticipants,
		match.ErrDuplicateParticipant,
		match.ErrDuplicatePosition,
		match.ErrInvalidPosition,
		match.ErrNoResults,
		match.ErrPlayerCountUnsupported,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	// Commands wrap their own precondition failures with fmt.Errorf and a
	// use-case prefix; treat those as client errors too.
	msg := err.Error()
	for _, prefix := range []string{
		"register_player:", "authenticate_player:", "update_player:",
		"deactivate_player:", "create_group:",
		"join_group:", "leave_group:", "add_game:", "schedule_match:",
		"finish_match:", "cancel_match:", "sync_game:",
	} {
		if len(msg) >= len(prefix) && msg[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
