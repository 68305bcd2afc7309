package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dropforge/airdrop-engine/internal/domain"
	"github.com/dropforge/airdrop-engine/internal/engine"
	"github.com/dropforge/airdrop-engine/internal/store"
	"github.com/dropforge/airdrop-engine/internal/store/schema"
)

// CampaignMonitors controls the background pollers attached to airdrops
type CampaignMonitors interface {
	// StartAirdropMonitor begins watching the event sources of an airdrop
	StartAirdropMonitor(ctx context.Context, airdrop *schema.Airdrop)
	// StopAirdropMonitor stops watching the event sources of an airdrop
	StopAirdropMonitor(airdropID int64)
}

// Handler defines the interface for REST API handlers
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)

	// CreateUser creates a new user
	// POST /api/v1/users
	CreateUser(c *gin.Context)

	// GetUser retrieves a user by id
	// GET /api/v1/users/:id
	GetUser(c *gin.Context)

	// UpdateUser updates a user's wallet address and/or X handle
	// PATCH /api/v1/users/:id
	UpdateUser(c *gin.Context)

	// ListTokens retrieves all tokens
	// GET /api/v1/tokens
	ListTokens(c *gin.Context)

	// GetToken retrieves a token by id
	// GET /api/v1/tokens/:id
	GetToken(c *gin.Context)

	// CreateToken mints a token on the ledger and records it
	// POST /api/v1/tokens
	CreateToken(c *gin.Context)

	// GetTokenBalance returns the ledger balance a wallet holds for a token
	// GET /api/v1/tokens/:id/balance/:address
	GetTokenBalance(c *gin.Context)

	// ListAirdrops retrieves all airdrop campaigns
	// GET /api/v1/airdrops
	ListAirdrops(c *gin.Context)

	// GetAirdrop retrieves an airdrop campaign by id
	// GET /api/v1/airdrops/:id
	GetAirdrop(c *gin.Context)

	// CreateAirdrop creates a campaign and starts its monitors
	// POST /api/v1/airdrops
	CreateAirdrop(c *gin.Context)

	// UpdateAirdrop updates a campaign's mutable fields
	// PATCH /api/v1/airdrops/:id
	UpdateAirdrop(c *gin.Context)

	// ListActivities retrieves recent distribution activities
	// GET /api/v1/activities?limit=<limit>
	ListActivities(c *gin.Context)

	// GetDashboardStats returns aggregate distribution statistics
	// GET /api/v1/dashboard/stats
	GetDashboardStats(c *gin.Context)

	// SubmitContractInteraction runs a contract event through the pipeline
	// POST /api/v1/interactions/contract
	SubmitContractInteraction(c *gin.Context)

	// SubmitXInteraction runs an X account event through the pipeline
	// POST /api/v1/interactions/x
	SubmitXInteraction(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	store    store.Store
	engine   *engine.Engine
	monitors CampaignMonitors
}

// NewHandler creates a new REST API handler
func NewHandler(st store.Store, eng *engine.Engine, monitors CampaignMonitors) Handler {
	return &handler{
		store:    st,
		engine:   eng,
		monitors: monitors,
	}
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type createUserRequest struct {
	Username      string  `json:"username" binding:"required"`
	Password      string  `json:"password" binding:"required"`
	WalletAddress *string `json:"wallet_address"`
	XHandle       *string `json:"x_handle"`
}

// CreateUser creates a new user
func (h *handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if req.WalletAddress != nil && !domain.ValidWalletAddress(*req.WalletAddress) {
		respondValidationError(c, "wallet_address must be a 0x-prefixed 40-hex-digit address")
		return
	}
	if req.XHandle != nil {
		normalized := domain.NormalizeHandle(*req.XHandle)
		if !domain.ValidXHandle(normalized) {
			respondValidationError(c, "x_handle must be at most 15 alphanumeric or underscore characters")
			return
		}
		req.XHandle = &normalized
	}

	user := &schema.User{
		Username:      req.Username,
		Password:      req.Password,
		WalletAddress: req.WalletAddress,
		XHandle:       req.XHandle,
	}
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, domain.ErrConstraintViolation) {
			respondConflict(c, "Username already taken")
			return
		}
		respondInternalError(c, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetUser retrieves a user by id
func (h *handler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.store.GetUser(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "Failed to fetch user")
		return
	}
	if user == nil {
		respondNotFound(c, "User not found")
		return
	}

	c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	WalletAddress *string `json:"wallet_address"`
	XHandle       *string `json:"x_handle"`
}

// UpdateUser updates a user's wallet address and/or X handle
func (h *handler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if req.WalletAddress != nil && !domain.ValidWalletAddress(*req.WalletAddress) {
		respondValidationError(c, "wallet_address must be a 0x-prefixed 40-hex-digit address")
		return
	}
	if req.XHandle != nil {
		normalized := domain.NormalizeHandle(*req.XHandle)
		if !domain.ValidXHandle(normalized) {
			respondValidationError(c, "x_handle must be at most 15 alphanumeric or underscore characters")
			return
		}
		req.XHandle = &normalized
	}

	existing, err := h.store.GetUser(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "Failed to fetch user")
		return
	}
	if existing == nil {
		respondNotFound(c, "User not found")
		return
	}

	user, err := h.store.UpdateUser(c.Request.Context(), id, store.UserUpdate{
		WalletAddress: req.WalletAddress,
		XHandle:       req.XHandle,
	})
	if err != nil {
		respondInternalError(c, err, "Failed to update user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListTokens retrieves all tokens
func (h *handler) ListTokens(c *gin.Context) {
	tokens, err := h.store.ListTokens(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to list tokens")
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// GetToken retrieves a token by id
func (h *handler) GetToken(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	token, err := h.store.GetToken(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "Failed to fetch token")
		return
	}
	if token == nil {
		respondNotFound(c, "Token not found")
		return
	}

	c.JSON(http.StatusOK, token)
}

type createTokenRequest struct {
	Name        string `json:"name" binding:"required"`
	Symbol      string `json:"symbol" binding:"required"`
	TotalSupply int64  `json:"total_supply" binding:"required,gt=0"`
}

// CreateToken mints a token on the ledger and records it
func (h *handler) CreateToken(c *gin.Context) {
	var req createTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	token, err := h.engine.CreateToken(c.Request.Context(), req.Name, req.Symbol, req.TotalSupply)
	if err != nil {
		if errors.Is(err, domain.ErrConstraintViolation) {
			respondConflict(c, "Token symbol already exists")
			return
		}
		respondInternalError(c, err, "Failed to create token", zap.String("symbol", req.Symbol))
		return
	}

	c.JSON(http.StatusCreated, token)
}

// GetTokenBalance returns the ledger balance a wallet holds for a token
func (h *handler) GetTokenBalance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	address := c.Param("address")
	if !domain.ValidWalletAddress(address) {
		respondValidationError(c, "address must be a 0x-prefixed 40-hex-digit address")
		return
	}

	balance, err := h.engine.GetBalance(c.Request.Context(), id, address)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondNotFound(c, "Token not found")
			return
		}
		respondInternalError(c, err, "Failed to fetch balance")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token_id": id,
		"address":  address,
		"balance":  balance,
	})
}

// ListAirdrops retrieves all airdrop campaigns
func (h *handler) ListAirdrops(c *gin.Context) {
	airdrops, err := h.store.ListAirdrops(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to list airdrops")
		return
	}
	c.JSON(http.StatusOK, airdrops)
}

// GetAirdrop retrieves an airdrop campaign by id
func (h *handler) GetAirdrop(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	airdrop, err := h.store.GetAirdropWithToken(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "Failed to fetch airdrop")
		return
	}
	if airdrop == nil {
		respondNotFound(c, "Airdrop not found")
		return
	}

	c.JSON(http.StatusOK, airdrop)
}

type createAirdropRequest struct {
	Name               string                     `json:"name" binding:"required"`
	TokenID            int64                      `json:"token_id" binding:"required"`
	TriggerType        domain.TriggerType         `json:"trigger_type" binding:"required"`
	ContractAddress    *string                    `json:"contract_address"`
	XAccount           *string                    `json:"x_account"`
	InteractionType    *string                    `json:"interaction_type"`
	XInteractionConfig *domain.XInteractionConfig `json:"x_interaction_config"`
	TokenAmount        int64                      `json:"token_amount" binding:"required,gt=0"`
	StartDate          *time.Time                 `json:"start_date"`
	EndDate            *time.Time                 `json:"end_date"`
	MaxTokens          *int64                     `json:"max_tokens"`
}

func (r *createAirdropRequest) validate() error {
	if !domain.IsValidTriggerType(r.TriggerType) {
		return fmt.Errorf("trigger_type must be one of contract, x_account, both")
	}
	if r.TriggerType.IncludesContract() {
		if r.ContractAddress == nil || !domain.ValidWalletAddress(*r.ContractAddress) {
			return fmt.Errorf("contract_address is required for contract-triggered airdrops")
		}
	}
	if r.TriggerType.IncludesXAccount() {
		if r.XAccount == nil {
			return fmt.Errorf("x_account is required for x_account-triggered airdrops")
		}
		normalized := domain.NormalizeHandle(*r.XAccount)
		if !domain.ValidXHandle(normalized) {
			return fmt.Errorf("x_account must be at most 15 alphanumeric or underscore characters")
		}
		r.XAccount = &normalized
		if r.XInteractionConfig == nil {
			return fmt.Errorf("x_interaction_config is required for x_account-triggered airdrops")
		}
	}
	if r.MaxTokens != nil && *r.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive when set")
	}
	if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
		return fmt.Errorf("end_date must not precede start_date")
	}
	return nil
}

// CreateAirdrop creates a campaign and starts its monitors
func (h *handler) CreateAirdrop(c *gin.Context) {
	var req createAirdropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	token, err := h.store.GetToken(c.Request.Context(), req.TokenID)
	if err != nil {
		respondInternalError(c, err, "Failed to fetch token")
		return
	}
	if token == nil {
		respondBadRequest(c, "token_id does not reference an existing token")
		return
	}

	startDate := time.Now().UTC()
	if req.StartDate != nil {
		startDate = *req.StartDate
	}

	airdrop := &schema.Airdrop{
		Name:               req.Name,
		TokenID:            req.TokenID,
		TriggerType:        req.TriggerType,
		ContractAddress:    req.ContractAddress,
		XAccount:           req.XAccount,
		InteractionType:    req.InteractionType,
		XInteractionConfig: req.XInteractionConfig,
		TokenAmount:        req.TokenAmount,
		StartDate:          startDate,
		EndDate:            req.EndDate,
		MaxTokens:          req.MaxTokens,
		Active:             true,
	}
	if err := h.store.CreateAirdrop(c.Request.Context(), airdrop); err != nil {
		respondInternalError(c, err, "Failed to create airdrop")
		return
	}

	if h.monitors != nil {
		h.monitors.StartAirdropMonitor(c.Request.Context(), airdrop)
	}

	c.JSON(http.StatusCreated, airdrop)
}

type updateAirdropRequest struct {
	Active      *bool      `json:"active"`
	TokenAmount *int64     `json:"token_amount"`
	EndDate     *time.Time `json:"end_date"`
	MaxTokens   *int64     `json:"max_tokens"`
}

// UpdateAirdrop updates a campaign's mutable fields
func (h *handler) UpdateAirdrop(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateAirdropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if req.TokenAmount != nil && *req.TokenAmount <= 0 {
		respondValidationError(c, "token_amount must be positive")
		return
	}
	if req.MaxTokens != nil && *req.MaxTokens <= 0 {
		respondValidationError(c, "max_tokens must be positive")
		return
	}

	existing, err := h.store.GetAirdrop(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "Failed to fetch airdrop")
		return
	}
	if existing == nil {
		respondNotFound(c, "Airdrop not found")
		return
	}

	airdrop, err := h.store.UpdateAirdrop(c.Request.Context(), id, store.AirdropUpdate{
		Active:      req.Active,
		TokenAmount: req.TokenAmount,
		EndDate:     req.EndDate,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		respondInternalError(c, err, "Failed to update airdrop")
		return
	}

	if h.monitors != nil && req.Active != nil {
		if *req.Active {
			h.monitors.StartAirdropMonitor(c.Request.Context(), airdrop)
		} else {
			h.monitors.StopAirdropMonitor(airdrop.ID)
		}
	}

	c.JSON(http.StatusOK, airdrop)
}

// ListActivities retrieves recent distribution activities
func (h *handler) ListActivities(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondValidationError(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	activities, err := h.store.ListActivitiesWithUserInfo(c.Request.Context(), limit)
	if err != nil {
		respondInternalError(c, err, "Failed to list activities")
		return
	}

	c.JSON(http.StatusOK, activities)
}

// GetDashboardStats returns aggregate distribution statistics
func (h *handler) GetDashboardStats(c *gin.Context) {
	stats, err := h.store.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to compute dashboard stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// SubmitContractInteraction runs a contract event through the pipeline
func (h *handler) SubmitContractInteraction(c *gin.Context) {
	var event domain.ContractEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if !event.Valid() {
		respondValidationError(c, "contract event requires valid contract_address, user_address and event_name")
		return
	}

	result, err := h.engine.SubmitContractInteraction(c.Request.Context(), &event)
	if err != nil {
		respondInternalError(c, err, "Failed to process contract interaction")
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitXInteraction runs an X account event through the pipeline
func (h *handler) SubmitXInteraction(c *gin.Context) {
	var event domain.SocialEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.UserHandle = domain.NormalizeHandle(event.UserHandle)
	event.ClientHandle = domain.NormalizeHandle(event.ClientHandle)
	if !event.Valid() {
		respondValidationError(c, "social event requires valid user_handle, client_handle and interaction")
		return
	}

	result, err := h.engine.SubmitSocialInteraction(c.Request.Context(), &event)
	if err != nil {
		respondInternalError(c, err, "Failed to process X interaction")
		return
	}

	c.JSON(http.StatusOK, result)
}

// pathID parses a positive integer id out of the given path parameter
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, fmt.Sprintf("%s must be a positive integer", name))
		return 0, false
	}
	return id, true
}
