package http

import (
	"errors"
	"net/http"

	"github.com/aescanero/chaincfg/internal/toolchain"
	"github.com/aescanero/chaincfg/pkg/ports"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// NetworkResponse describes a network without its signing key
type NetworkResponse struct {
	Name              string `json:"name"`
	URL               string `json:"url"`
	ChainID           uint64 `json:"chainId"`
	SigningKeyPresent bool   `json:"signingKeyPresent"`
}

// CheckResult is one point-of-use readiness check
type CheckResult struct {
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	if !s.publisher.Published() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "starting",
			"checks": gin.H{"publisher": "not published"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"checks": gin.H{"publisher": "ok"},
	})
}

// handleGetConfig returns the redacted configuration
func (s *Server) handleGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.publisher.Config().Redacted())
}

// handleGetCompiler returns the compiler settings
func (s *Server) handleGetCompiler(c *gin.Context) {
	c.JSON(http.StatusOK, s.publisher.Config().Compiler)
}

// handleListNetworks lists the configured networks
func (s *Server) handleListNetworks(c *gin.Context) {
	cfg := s.publisher.Config()

	networks := make([]NetworkResponse, 0, len(cfg.Networks))
	for _, name := range cfg.NetworkNames() {
		networks = append(networks, toNetworkResponse(name, cfg.Networks[name]))
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  networks,
		"total": len(networks),
	})
}

// handleGetNetwork returns a single network
func (s *Server) handleGetNetwork(c *gin.Context) {
	name := c.Param("name")

	n, err := s.publisher.Config().Network(name)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{
				Code:    "NETWORK_NOT_FOUND",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, toNetworkResponse(name, n))
}

// handleGetVerification reports whether the verification credential is set
func (s *Server) handleGetVerification(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"apiKeyPresent": s.publisher.Config().Verification.APIKey.Present(),
	})
}

// handleGetSnapshot returns the latest stored snapshot
func (s *Server) handleGetSnapshot(c *gin.Context) {
	snapshot, err := s.store.Latest(c.Request.Context())
	if err != nil {
		if errors.Is(err, ports.ErrSnapshotNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: ErrorDetail{
					Code:    "SNAPSHOT_NOT_FOUND",
					Message: "No snapshot has been published",
				},
			})
			return
		}

		s.logger.Error("failed to load snapshot", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "STORE_ERROR",
				Message: "Failed to retrieve snapshot",
				Details: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// handleValidate runs the checks consumers would hit at point of use
func (s *Server) handleValidate(c *gin.Context) {
	cfg := s.publisher.Config()

	checks := []CheckResult{check("structure", cfg.Validate())}
	for _, name := range cfg.NetworkNames() {
		_, err := cfg.Networks[name].Accounts()
		checks = append(checks, check("accounts."+name, err))
	}
	_, err := cfg.Verification.Credential()
	checks = append(checks, check("verification", err))

	ready := true
	for _, ch := range checks {
		ready = ready && ch.Ready
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, gin.H{
		"ready":  ready,
		"checks": checks,
	})
}

func check(name string, err error) CheckResult {
	if err != nil {
		return CheckResult{Name: name, Error: err.Error()}
	}
	return CheckResult{Name: name, Ready: true}
}

func toNetworkResponse(name string, n toolchain.NetworkEndpoint) NetworkResponse {
	return NetworkResponse{
		Name:              name,
		URL:               n.URL,
		ChainID:           n.ChainID,
		SigningKeyPresent: n.SigningKey.Present(),
	}
}
