package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Veraticus/spends/internal/assistant"
	"github.com/Veraticus/spends/internal/common"
	"github.com/Veraticus/spends/internal/model"
	"github.com/Veraticus/spends/internal/storage"
)

// ParseRequest asks for a single message to be extracted.
type ParseRequest struct {
	Message string `json:"message" validate:"required"`
}

// ParseResponse carries the extraction outcome.
type ParseResponse struct {
	Transaction   *model.Transaction `json:"transaction,omitempty"`
	IsTransaction bool               `json:"is_transaction"`
}

// ProcessRequest starts a batch run. Without messages the configured
// inbox is used.
type ProcessRequest struct {
	Messages []string `json:"messages" validate:"omitempty,dive,required"`
}

// QueryRequest runs a read-only query.
type QueryRequest struct {
	SQL string `json:"sql" validate:"required"`
}

// AskRequest is a natural-language question about the stored transactions.
type AskRequest struct {
	Question string `json:"question" validate:"required"`
}

type healthResponse struct {
	Kind   string `json:"kind"`
	Status string `json:"status"`
}

func (s *Server) health() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return restSuccess(c, fiber.StatusOK, healthResponse{
			Kind:   "health",
			Status: "server is up and running",
		})
	}
}

func (s *Server) parse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(ParseRequest)
		if err := parseBody(c, req); err != nil {
			return err
		}

		txn, err := s.extractor.Extract(c.UserContext(), req.Message)
		if err != nil {
			return restError(c, fiber.StatusInternalServerError, err)
		}
		return restSuccess(c, fiber.StatusOK, ParseResponse{Transaction: txn, IsTransaction: txn != nil})
	}
}

func (s *Server) process() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(ProcessRequest)
		if len(c.Body()) > 0 {
			if err := parseBody(c, req); err != nil {
				return err
			}
		}

		if s.cfg.Orchestrator.Running() {
			return restError(c, fiber.StatusConflict, errors.New("a batch run is already in progress"))
		}

		messages := req.Messages
		if len(messages) == 0 && s.cfg.Messages != nil {
			messages = s.cfg.Messages()
		}
		s.startRun(messages)

		return restSuccess(c, fiber.StatusAccepted, fiber.Map{
			"kind":     "process",
			"messages": len(messages),
		})
	}
}

func (s *Server) status() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return restSuccess(c, fiber.StatusOK, s.cfg.Orchestrator.Status())
	}
}

func (s *Server) reset() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s.cfg.Orchestrator.Running() {
			return restError(c, fiber.StatusConflict, errors.New("cannot reset during a batch run"))
		}
		s.cfg.Orchestrator.Reset()
		return restSuccess(c, fiber.StatusOK, s.cfg.Orchestrator.Status())
	}
}

func (s *Server) transactions() fiber.Handler {
	return func(c *fiber.Ctx) error {
		txns, err := s.cfg.Store.ListTransactions(c.UserContext())
		if err != nil {
			return restError(c, fiber.StatusInternalServerError, err)
		}
		if txns == nil {
			txns = []model.Transaction{}
		}
		return restCollection(c, txns, len(txns))
	}
}

func (s *Server) summary() fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := s.cfg.Store.GetSummary(c.UserContext())
		if err != nil {
			return restError(c, fiber.StatusInternalServerError, err)
		}
		return restSuccess(c, fiber.StatusOK, summary)
	}
}

func (s *Server) query() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(QueryRequest)
		if err := parseBody(c, req); err != nil {
			return err
		}

		rows, err := s.cfg.Store.RawQuery(c.UserContext(), req.SQL)
		if err != nil {
			if errors.Is(err, storage.ErrNotSelect) {
				return restError(c, fiber.StatusBadRequest, err)
			}
			return restError(c, fiber.StatusUnprocessableEntity, err)
		}
		return restCollection(c, rows, len(rows))
	}
}

func (s *Server) ask() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(AskRequest)
		if err := parseBody(c, req); err != nil {
			return err
		}
		if s.assistant == nil {
			return restError(c, fiber.StatusServiceUnavailable,
				fmt.Errorf("%w: no text generation provider configured", common.ErrBackendUnavailable))
		}

		answer, err := s.assistant.Ask(c.UserContext(), req.Question)
		if err != nil {
			switch {
			case errors.Is(err, assistant.ErrNoQuery), errors.Is(err, storage.ErrNotSelect):
				return restError(c, fiber.StatusUnprocessableEntity, err)
			default:
				return restError(c, fiber.StatusBadGateway, err)
			}
		}
		return restSuccess(c, fiber.StatusOK, answer)
	}
}
