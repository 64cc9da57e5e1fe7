package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/cinex/api"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/stretchr/testify/suite"
)

type SelectionHandlerTestSuite struct {
	suite.Suite
	app *testApp
}

func (s *SelectionHandlerTestSuite) SetupTest() {
	s.app = newTestApplication(s.T())
}

func TestSelectionHandlerSuite(t *testing.T) {
	suite.Run(t, new(SelectionHandlerTestSuite))
}

func (s *SelectionHandlerTestSuite) decodeSelection(body []byte) api.SelectionResponse {
	var resp api.SelectionResponse
	s.Require().NoError(json.Unmarshal(body, &resp))
	return resp
}

func (s *SelectionHandlerTestSuite) TestSelectTimeHandler() {
	tests := []struct {
		name           string
		showID         string
		input          any
		wantStatus     int
		wantErrMessage string
		wantResponse   *api.SelectionResponse
	}{
		{
			name:           "should fail when body is missing",
			showID:         testShowID,
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "body must not be empty",
		},
		{
			name:           "should fail when time id is empty",
			showID:         testShowID,
			input:          api.SelectTimeRequest{},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "is required",
		},
		{
			name:           "should fail when time id is malformed",
			showID:         testShowID,
			input:          api.SelectTimeRequest{TimeId: "tomorrow"},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be a show time id",
		},
		{
			name:           "should fail when body has unknown fields",
			showID:         testShowID,
			input:          map[string]string{"timeId": testTimeID, "seat": "A1"},
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: `body contains unknown key "seat"`,
		},
		{
			name:           "should fail when show does not exist",
			showID:         unknownShow,
			input:          api.SelectTimeRequest{TimeId: testTimeID},
			wantStatus:     http.StatusNotFound,
			wantErrMessage: domain.ErrShowNotFound.Error(),
		},
		{
			name:           "should fail when time belongs to another show",
			showID:         testShowID,
			input:          api.SelectTimeRequest{TimeId: "68395b407f6329be2bb45bd2-0724-1800"},
			wantStatus:     http.StatusNotFound,
			wantErrMessage: domain.ErrTimeSlotNotFound.Error(),
		},
		{
			name:       "should select time and load occupancy",
			showID:     testShowID,
			input:      api.SelectTimeRequest{TimeId: testTimeID},
			wantStatus: http.StatusOK,
			wantResponse: &api.SelectionResponse{
				ShowId: testShowID,
				Status: api.TimeSelected,
				SelectedTime: &api.TimeSlot{
					Time:   mustParseTime("2025-07-24T01:00:00Z"),
					TimeId: testTimeID,
				},
				SelectedSeats: []string{},
				OccupiedSeats: []string{},
				TotalPrice:    "0.00",
				Currency:      "USD",
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			w, r := executeRequest(s.T(), http.MethodPut, fmt.Sprintf("/shows/%s/selection/time", tt.showID), tt.input)
			r, _ = setupTestSession(s.T(), s.app.Application, r, "")

			serve(s.app.Application, w, r, func(w http.ResponseWriter, r *http.Request) {
				s.app.SelectTime(w, r, tt.showID)
			})

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantResponse != nil {
				resp := s.decodeSelection(w.Body.Bytes())
				diff := cmp.Diff(*tt.wantResponse, resp)
				s.Empty(diff, "Response mismatch (-want +got):\n%s", diff)
			}

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func (s *SelectionHandlerTestSuite) TestSelectTimeShowsSeatsBookedByOthers() {
	bookSeats(s.T(), s.app, "other-guest", "A1", "A2")

	w, r := executeRequest(s.T(), http.MethodPut, "/", api.SelectTimeRequest{TimeId: testTimeID})
	r, _ = setupTestSession(s.T(), s.app.Application, r, "")

	serve(s.app.Application, w, r, func(w http.ResponseWriter, r *http.Request) {
		s.app.SelectTime(w, r, testShowID)
	})

	s.Require().Equal(http.StatusOK, w.Code)
	resp := s.decodeSelection(w.Body.Bytes())
	s.Equal([]string{"A1", "A2"}, resp.OccupiedSeats)
	s.False(resp.Loading)
	s.False(resp.Degraded)
}

func (s *SelectionHandlerTestSuite) TestToggleSeatHandler() {
	tests := []struct {
		name           string
		seatID         string
		selectTime     bool
		preselect      []string
		wantStatus     int
		wantErrMessage string
		wantSeats      []string
		wantTotal      string
	}{
		{
			name:           "should fail when no time is selected",
			seatID:         "A1",
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: domain.ErrNoTimeSelected.Error(),
		},
		{
			name:       "should fail for a seat outside the hall",
			seatID:     "K1",
			selectTime: true,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:           "should fail for an occupied seat",
			seatID:         "J9",
			selectTime:     true,
			wantStatus:     http.StatusConflict,
			wantErrMessage: domain.ErrSeatOccupied.Error(),
		},
		{
			name:           "should fail when the limit is reached",
			seatID:         "B6",
			selectTime:     true,
			preselect:      []string{"B1", "B2", "B3", "B4", "B5"},
			wantStatus:     http.StatusConflict,
			wantErrMessage: domain.ErrSelectionLimit.Error(),
		},
		{
			name:       "should select a free seat",
			seatID:     "C3",
			selectTime: true,
			preselect:  []string{"B1"},
			wantStatus: http.StatusOK,
			wantSeats:  []string{"B1", "C3"},
			wantTotal:  "24.00",
		},
		{
			name:       "should deselect a selected seat",
			seatID:     "B1",
			selectTime: true,
			preselect:  []string{"B1", "B2"},
			wantStatus: http.StatusOK,
			wantSeats:  []string{"B2"},
			wantTotal:  "12.00",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			bookSeats(s.T(), s.app, "other-guest", "J9")

			w, r := executeRequest(s.T(), http.MethodPost, fmt.Sprintf("/shows/%s/selection/seats/%s", testShowID, tt.seatID), nil)
			r, _ = setupTestSession(s.T(), s.app.Application, r, "")

			key := domain.SelectionKey{SessionID: s.app.contextGetOwner(r), ShowID: testShowID}
			if tt.selectTime {
				_, err := s.app.selections.SelectTime(r.Context(), key, testTimeID)
				s.Require().NoError(err)
			}
			for _, seat := range tt.preselect {
				_, err := s.app.selections.ToggleSeat(r.Context(), key, seat)
				s.Require().NoError(err)
			}

			serve(s.app.Application, w, r, func(w http.ResponseWriter, r *http.Request) {
				s.app.ToggleSeat(w, r, testShowID, tt.seatID)
			})

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantSeats != nil {
				resp := s.decodeSelection(w.Body.Bytes())
				s.Equal(tt.wantSeats, resp.SelectedSeats)
				s.Equal(tt.wantTotal, resp.TotalPrice)
				s.Equal(api.SeatsPicked, resp.Status)
			}

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func (s *SelectionHandlerTestSuite) TestGetSeatLayoutHandler() {
	bookSeats(s.T(), s.app, "other-guest", "A1")

	w, r := executeRequest(s.T(), http.MethodGet, "/", nil)
	r, _ = setupTestSession(s.T(), s.app.Application, r, "")

	key := domain.SelectionKey{SessionID: s.app.contextGetOwner(r), ShowID: testShowID}
	_, err := s.app.selections.SelectTime(r.Context(), key, testTimeID)
	s.Require().NoError(err)
	_, err = s.app.selections.ToggleSeat(r.Context(), key, "A2")
	s.Require().NoError(err)

	serve(s.app.Application, w, r, func(w http.ResponseWriter, r *http.Request) {
		s.app.GetSeatLayout(w, r, testShowID)
	})

	s.Require().Equal(http.StatusOK, w.Code)

	var resp api.SeatLayoutResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))

	s.Len(resp.RowGroups, 5)
	s.Require().NotNil(resp.SelectedTime)
	s.Equal(testTimeID, resp.SelectedTime.TimeId)

	firstRow := resp.RowGroups[0].Rows[0]
	s.Equal("A", firstRow.Row)
	s.Len(firstRow.Seats, domain.SeatsPerRow)
	s.Equal(api.Seat{Id: "A1", Occupied: true}, firstRow.Seats[0])
	s.Equal(api.Seat{Id: "A2", Selected: true}, firstRow.Seats[1])
	s.Equal(api.Seat{Id: "A3"}, firstRow.Seats[2])

	lastRow := resp.RowGroups[4].Rows[1]
	s.Equal("J", lastRow.Row)
	s.Equal("J9", lastRow.Seats[8].Id)
}

func (s *SelectionHandlerTestSuite) TestGetSeatLayoutUnknownShow() {
	w, r := executeRequest(s.T(), http.MethodGet, "/", nil)
	r, _ = setupTestSession(s.T(), s.app.Application, r, "")

	serve(s.app.Application, w, r, func(w http.ResponseWriter, r *http.Request) {
		s.app.GetSeatLayout(w, r, unknownShow)
	})

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *SelectionHandlerTestSuite) TestConfirmSelectionHandler() {
	tests := []struct {
		name           string
		input          any
		seats          []string
		takenByOther   []string
		wantStatus     int
		wantErrMessage string
		wantAmount     string
		wantMail       bool
	}{
		{
			name:           "should fail without seats",
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: domain.ErrIncompleteSelection.Error(),
		},
		{
			name:           "should fail for an invalid email",
			input:          api.ConfirmSelectionRequest{Email: ptr("not-an-email")},
			seats:          []string{"D4"},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be a valid email address",
		},
		{
			name:           "should fail when a seat was booked in the meantime",
			seats:          []string{"D4", "D5"},
			takenByOther:   []string{"D5"},
			wantStatus:     http.StatusConflict,
			wantErrMessage: domain.ErrSeatOccupied.Error(),
		},
		{
			name:       "should book without a receipt",
			seats:      []string{"D4", "D5"},
			wantStatus: http.StatusCreated,
			wantAmount: "24.00",
		},
		{
			name:       "should book and mail a receipt",
			input:      api.ConfirmSelectionRequest{Email: ptr("guest@example.com")},
			seats:      []string{"E1", "E2", "E3"},
			wantStatus: http.StatusCreated,
			wantAmount: "36.00",
			wantMail:   true,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			w, r := executeRequest(s.T(), http.MethodPost, fmt.Sprintf("/shows/%s/selection/confirm", testShowID), tt.input)
			r, token := setupTestSession(s.T(), s.app.Application, r, "")

			key := domain.SelectionKey{SessionID: s.app.contextGetOwner(r), ShowID: testShowID}
			if len(tt.seats) > 0 {
				_, err := s.app.selections.SelectTime(r.Context(), key, testTimeID)
				s.Require().NoError(err)

				for _, seat := range tt.seats {
					_, err = s.app.selections.ToggleSeat(r.Context(), key, seat)
					s.Require().NoError(err)
				}
			}

			if len(tt.takenByOther) > 0 {
				bookSeats(s.T(), s.app, "other-guest", tt.takenByOther...)
			}

			serve(s.app.Application, w, r, func(w http.ResponseWriter, r *http.Request) {
				s.app.ConfirmSelection(w, r, testShowID)
			})
			s.app.wg.Wait()

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusCreated {
				var resp api.ConfirmSelectionResponse
				s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
				s.Equal(tt.wantAmount, resp.Amount)
				s.Equal("USD", resp.Currency)

				booking, err := s.app.bookingRepo.Get(r.Context(), resp.BookingId)
				s.Require().NoError(err)
				s.Equal(s.app.contextGetOwner(r), booking.OwnerID)
				s.NotEqual(token, booking.OwnerID, "the session token must not be stored with the booking")
				s.False(booking.IsPaid)

				selection, err := s.app.selections.State(r.Context(), key)
				s.Require().NoError(err)
				s.Equal(domain.StatusNoTimeSelected, selection.Status())
			}

			emails := s.app.mockMailer.GetSentEmails()
			if tt.wantMail {
				s.Require().Len(emails, 1)
				s.Equal("guest@example.com", emails[0].Recipient)
				s.Equal(bookingReceiptTemplate, emails[0].TemplateFile)
			} else {
				s.Empty(emails)
			}

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func (s *SelectionHandlerTestSuite) TestResetSelectionHandler() {
	w, r := executeRequest(s.T(), http.MethodDelete, "/", nil)
	r, _ = setupTestSession(s.T(), s.app.Application, r, "")

	key := domain.SelectionKey{SessionID: s.app.contextGetOwner(r), ShowID: testShowID}
	_, err := s.app.selections.SelectTime(r.Context(), key, testTimeID)
	s.Require().NoError(err)
	_, err = s.app.selections.ToggleSeat(r.Context(), key, "F1")
	s.Require().NoError(err)

	serve(s.app.Application, w, r, func(w http.ResponseWriter, r *http.Request) {
		s.app.ResetSelection(w, r, testShowID)
	})

	s.Require().Equal(http.StatusOK, w.Code)

	resp := s.decodeSelection(w.Body.Bytes())
	s.Equal(api.NoTimeSelected, resp.Status)
	s.Nil(resp.SelectedTime)
	s.Empty(resp.SelectedSeats)
	s.Equal("0.00", resp.TotalPrice)
}

func (s *SelectionHandlerTestSuite) TestSelectionsAreScopedToSession() {
	other := domain.SelectionKey{SessionID: "other-guest", ShowID: testShowID}
	_, err := s.app.selections.SelectTime(context.Background(), other, testTimeID)
	s.Require().NoError(err)
	_, err = s.app.selections.ToggleSeat(context.Background(), other, "G1")
	s.Require().NoError(err)

	w, r := executeRequest(s.T(), http.MethodGet, "/", nil)
	r, _ = setupTestSession(s.T(), s.app.Application, r, "")

	serve(s.app.Application, w, r, func(w http.ResponseWriter, r *http.Request) {
		s.app.GetSelection(w, r, testShowID)
	})

	s.Require().Equal(http.StatusOK, w.Code)
	resp := s.decodeSelection(w.Body.Bytes())
	s.Equal(api.NoTimeSelected, resp.Status)
	s.Empty(resp.SelectedSeats)
	s.Empty(resp.OccupiedSeats)
}
