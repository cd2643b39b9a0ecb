package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"cradle/internal/child"
	"cradle/internal/child/handler/mocks"
	"cradle/internal/child/service"
	"cradle/internal/ledger"
	dErrors "cradle/pkg/domainerrors"
	"cradle/pkg/requestcontext"
)

type ChildHandlerSuite struct {
	suite.Suite
	mock   *mocks.MockService
	router chi.Router
}

func TestChildHandlerSuite(t *testing.T) {
	suite.Run(t, new(ChildHandlerSuite))
}

func (s *ChildHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.T().Cleanup(ctrl.Finish)
	s.mock = mocks.NewMockService(ctrl)

	h := New(s.mock, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	s.router.Route("/admin", h.RegisterAdmin)
}

func (s *ChildHandlerSuite) serve(method, target string, body any, principal *requestcontext.AuthPrincipal) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := req.Context()
	if principal != nil {
		ctx = requestcontext.WithPrincipal(ctx, *principal)
	}
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ChildHandlerSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func owner() *requestcontext.AuthPrincipal {
	return &requestcontext.AuthPrincipal{UserID: 1, Role: requestcontext.RolePatient}
}

func admin() *requestcontext.AuthPrincipal {
	return &requestcontext.AuthPrincipal{UserID: 9, Role: requestcontext.RoleAdmin}
}

func (s *ChildHandlerSuite) TestRegister() {
	s.mock.EXPECT().Register(gomock.Any(), *owner(), service.RegisterInput{
		Name:       "Aria",
		BirthDate:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Gender:     "female",
		GuardianID: 1,
	}).Return(child.Record{
		ID:         12,
		Name:       "Aria",
		BirthDate:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Gender:     "female",
		GuardianID: 1,
		Identifier: "BABY-2026-1A2B3C4D",
		Active:     true,
	}, nil)

	w := s.serve(http.MethodPost, "/children", map[string]any{
		"name":        "Aria",
		"birth_date":  "2026-01-05",
		"gender":      "female",
		"guardian_id": 1,
	}, owner())

	s.Equal(http.StatusCreated, w.Code)
	resp := s.decode(w)
	s.Equal(true, resp["success"])
	s.Equal("Child registered successfully", resp["message"])
	record := resp["child"].(map[string]any)
	s.Equal("BABY-2026-1A2B3C4D", record["unique_id"])
	s.Equal("2026-01-05", record["birth_date"])
}

func (s *ChildHandlerSuite) TestRegisterBadBirthDate() {
	w := s.serve(http.MethodPost, "/children", map[string]any{
		"name":        "Aria",
		"birth_date":  "05/01/2026",
		"gender":      "female",
		"guardian_id": 1,
	}, owner())

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("birth_date must be YYYY-MM-DD", s.decode(w)["error"])
}

func (s *ChildHandlerSuite) TestValidate() {
	s.mock.EXPECT().Validate(gomock.Any(), "BABY-2026-1A2B3C4D").Return(true, nil)

	w := s.serve(http.MethodGet, "/identifiers/BABY-2026-1A2B3C4D/validate", nil, owner())

	s.Equal(http.StatusOK, w.Code)
	resp := s.decode(w)
	s.Equal(true, resp["valid"])
	s.Equal("BABY-2026-1A2B3C4D", resp["identifier"])
}

func (s *ChildHandlerSuite) TestLookupIncludesGuardianContact() {
	s.mock.EXPECT().LookupWithGuardian(gomock.Any(), *owner(), "BABY-2026-1A2B3C4D").Return(child.WithGuardian{
		Record: child.Record{
			ID:         12,
			Name:       "Aria",
			BirthDate:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			GuardianID: 1,
			Identifier: "BABY-2026-1A2B3C4D",
		},
		GuardianName:  "Maya Chen",
		GuardianEmail: "maya@example.com",
	}, nil)

	w := s.serve(http.MethodGet, "/identifiers/BABY-2026-1A2B3C4D", nil, owner())

	s.Equal(http.StatusOK, w.Code)
	record := s.decode(w)["child"].(map[string]any)
	guardianInfo := record["guardian"].(map[string]any)
	s.Equal("Maya Chen", guardianInfo["name"])
	s.Equal("maya@example.com", guardianInfo["email"])
}

func (s *ChildHandlerSuite) TestLookupAccessDenied() {
	s.mock.EXPECT().LookupWithGuardian(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(child.WithGuardian{}, dErrors.New(dErrors.CodeAccessDenied, "not authorized to view this record"))

	w := s.serve(http.MethodGet, "/identifiers/BABY-2026-1A2B3C4D", nil, owner())

	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("not authorized to view this record", s.decode(w)["error"])
}

func (s *ChildHandlerSuite) TestVerificationPayload() {
	s.mock.EXPECT().VerificationPayload(gomock.Any(), *owner(), "BABY-2026-1A2B3C4D").Return(service.Verification{
		Identifier:      "BABY-2026-1A2B3C4D",
		ChildName:       "Aria",
		VerificationURL: "https://cradle.example.com/api/identifiers/BABY-2026-1A2B3C4D/validate",
	}, nil)

	w := s.serve(http.MethodGet, "/identifiers/BABY-2026-1A2B3C4D/qr", nil, owner())

	s.Equal(http.StatusOK, w.Code)
	resp := s.decode(w)
	s.Equal("Aria", resp["child_name"])
	s.Contains(resp["verification_url"], "/validate")
}

func (s *ChildHandlerSuite) TestRegenerate() {
	s.mock.EXPECT().Regenerate(gomock.Any(), *owner(), int64(12)).Return("BABY-2026-AABBCCDD", nil)

	w := s.serve(http.MethodPost, "/children/12/identifier/regenerate", nil, owner())

	s.Equal(http.StatusOK, w.Code)
	resp := s.decode(w)
	s.Equal("BABY-2026-AABBCCDD", resp["new_identifier"])
	s.Equal("Unique ID regenerated successfully", resp["message"])
}

func (s *ChildHandlerSuite) TestRegenerateNotFound() {
	s.mock.EXPECT().Regenerate(gomock.Any(), gomock.Any(), int64(404)).
		Return("", dErrors.New(dErrors.CodeNotFound, "child record not found"))

	w := s.serve(http.MethodPost, "/children/404/identifier/regenerate", nil, owner())

	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("child record not found", s.decode(w)["error"])
}

func (s *ChildHandlerSuite) TestRegenerateBadChildID() {
	w := s.serve(http.MethodPost, "/children/abc/identifier/regenerate", nil, owner())
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ChildHandlerSuite) TestHistory() {
	s.mock.EXPECT().History(gomock.Any(), *owner(), int64(12)).Return([]ledger.Entry{
		{
			ChildID:       12,
			OldIdentifier: "BABY-2026-1A2B3C4D",
			NewIdentifier: "BABY-2026-AABBCCDD",
			Reason:        ledger.ReasonUserRequested,
			CreatedAt:     time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		},
	}, nil)

	w := s.serve(http.MethodGet, "/children/12/identifier/history", nil, owner())

	s.Equal(http.StatusOK, w.Code)
	history := s.decode(w)["history"].([]any)
	s.Require().Len(history, 1)
	entry := history[0].(map[string]any)
	s.Equal("BABY-2026-1A2B3C4D", entry["old_unique_id"])
	s.Equal("BABY-2026-AABBCCDD", entry["new_unique_id"])
	s.Equal(ledger.ReasonUserRequested, entry["reason"])
}

func (s *ChildHandlerSuite) TestDeactivate() {
	s.mock.EXPECT().Deactivate(gomock.Any(), *owner(), int64(12)).Return(nil)

	w := s.serve(http.MethodDelete, "/children/12", nil, owner())

	s.Equal(http.StatusOK, w.Code)
	s.Equal("Child record deactivated", s.decode(w)["message"])
}

func (s *ChildHandlerSuite) TestAssign() {
	childID := int64(12)
	s.mock.EXPECT().Assign(gomock.Any(), *admin(), service.AssignInput{
		ChildID:    &childID,
		GuardianID: 2,
	}).Return(service.AssignResult{
		ChildID:       12,
		OldGuardianID: 1,
		NewGuardianID: 2,
		OldIdentifier: "BABY-2026-1A2B3C4D",
		NewIdentifier: "BABY-2026-1A2B3C4D",
	}, nil)

	w := s.serve(http.MethodPost, "/admin/children/assign", map[string]any{
		"child_id":    12,
		"guardian_id": 2,
	}, admin())

	s.Equal(http.StatusOK, w.Code)
	resp := s.decode(w)
	s.Equal(float64(2), resp["new_guardian_id"])
	s.Equal("Child reassigned successfully", resp["message"])
}

func (s *ChildHandlerSuite) TestAssignTargetUserNotFound() {
	s.mock.EXPECT().Assign(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(service.AssignResult{}, dErrors.New(dErrors.CodeNotFound, "target user not found"))

	w := s.serve(http.MethodPost, "/admin/children/assign", map[string]any{
		"child_id":    12,
		"guardian_id": 404,
	}, admin())

	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("target user not found", s.decode(w)["error"])
}

func (s *ChildHandlerSuite) TestAdminList() {
	s.mock.EXPECT().ListAllForAdmin(gomock.Any()).Return([]child.AdminListing{
		{
			ChildID:      12,
			Name:         "Aria",
			BirthDate:    time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			Identifier:   "BABY-2026-1A2B3C4D",
			GuardianID:   1,
			GuardianName: "Maya Chen",
		},
	}, nil)

	w := s.serve(http.MethodGet, "/admin/children", nil, admin())

	s.Equal(http.StatusOK, w.Code)
	children := s.decode(w)["children"].([]any)
	s.Require().Len(children, 1)
	listing := children[0].(map[string]any)
	s.Equal("Maya Chen", listing["guardian_name"])
	s.Equal("2026-01-05", listing["birth_date"])
}

func (s *ChildHandlerSuite) TestMissingPrincipalIsInternal() {
	w := s.serve(http.MethodPost, "/children/12/identifier/regenerate", nil, nil)
	s.Equal(http.StatusInternalServerError, w.Code)
}
