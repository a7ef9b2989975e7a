package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudx-io/auctionhouse/core"
	"github.com/cloudx-io/auctionhouse/houseapi"
)

func errorResponse(format string, args ...any) houseapi.ErrorResponse {
	return houseapi.ErrorResponse{Type: houseapi.TypeError, Message: fmt.Sprintf(format, args...)}
}

// handleRequest decodes one request and returns the value to encode as its response.
func (s *Server) handleRequest(ctx context.Context, raw []byte) any {
	start := time.Now()

	var req houseapi.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		s.logger.Error("failed to decode request", "error", err)
		return errorResponse("Failed to decode request: %v", err)
	}
	s.logger.Info("received request", "type", req.Type)

	switch req.Type {
	case houseapi.TypePing:
		return houseapi.PongResponse{
			Type:      houseapi.TypePong,
			Message:   "house server is healthy",
			Timestamp: time.Now().Unix(),
		}

	case houseapi.TypeKeyRequest:
		keyResp, err := HandleKeyRequest(s.keyManager)
		if err != nil {
			s.logger.Error("key request failed", "error", err)
			return errorResponse("Key request failed: %v", err)
		}
		return keyResp

	case houseapi.TypeViewCatalogue:
		return houseapi.CatalogueResponse{
			Type:    houseapi.TypeCatalogueResponse,
			Entries: s.house.ViewCatalogue(),
		}

	case houseapi.TypeRegisterBuyer:
		return s.result(start, s.house.RegisterBuyer(req.Name, req.Address, req.BankAccount, req.AuthCode))

	case houseapi.TypeRegisterSeller:
		return s.result(start, s.house.RegisterSeller(req.Name, req.Address, req.BankAccount))

	case houseapi.TypeAddLot:
		reserve := core.Zero
		if req.ReservePrice != nil {
			reserve = *req.ReservePrice
		}
		return s.result(start, s.house.AddLot(req.Seller, req.Lot, req.Description, reserve))

	case houseapi.TypeNoteInterest:
		return s.result(start, s.house.NoteInterest(req.Buyer, req.Lot))

	case houseapi.TypeOpenAuction:
		return s.result(start, s.house.OpenAuction(ctx, req.Auctioneer, req.Address, req.Lot))

	case houseapi.TypeMakeBid:
		if req.Amount == nil {
			return errorResponse("make_bid requires an amount")
		}
		return s.result(start, s.house.MakeBid(ctx, req.Buyer, req.Lot, *req.Amount))

	case houseapi.TypeCloseAuction:
		status := s.house.CloseAuction(ctx, req.Auctioneer, req.Lot)
		result := s.result(start, status)
		if status.Sale != nil {
			result.Receipt = s.issueReceipt(status.Sale)
		}
		return result

	default:
		return errorResponse("Unknown request type: %s", req.Type)
	}
}

// result maps an engine status onto the wire.
func (s *Server) result(start time.Time, status core.Status) *houseapi.Result {
	return &houseapi.Result{
		Type:           houseapi.TypeResult,
		Success:        status.IsOK(),
		Kind:           status.Kind,
		Message:        status.Message,
		Sale:           status.Sale,
		ProcessingTime: time.Since(start).Milliseconds(),
	}
}

// issueReceipt signs a receipt for a sale. A signing failure is logged and the
// sale is reported without one; the engine state has already changed.
func (s *Server) issueReceipt(record *core.SaleRecord) *houseapi.SignedReceipt {
	receipt, _, err := s.receipts.Issue(record)
	if err != nil {
		s.logger.Error("failed to issue receipt", "lot", record.LotNumber, "error", err)
		return nil
	}
	s.logger.Info("receipt issued", "lot", record.LotNumber, "receipt_id", receipt.ReceiptID)
	return receipt
}
