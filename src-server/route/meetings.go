package route

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sam/src-server/model"
	"sam/src-server/service"
	"sam/src-server/utils"
)

func Meetings(muxer *http.ServeMux, as *utils.AppState, svc *service.MeetingService) {
	type OneParticipantRespBody struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	type OneMeetingRespBody struct {
		ID             int64                    `json:"id"`
		RemoteID       string                   `json:"remoteID"`
		Title          string                   `json:"title"`
		StartUnixUTC   int64                    `json:"startUnixUTC"`
		EndUnixUTC     int64                    `json:"endUnixUTC"`
		OrganizerEmail string                   `json:"organizerEmail"`
		MeetLink       string                   `json:"meetLink"`
		Participants   []OneParticipantRespBody `json:"participants"`
	}

	toRespBody := func(m model.Meeting) OneMeetingRespBody {
		resp := OneMeetingRespBody{
			ID:             m.ID,
			RemoteID:       m.RemoteID,
			Title:          m.Title,
			StartUnixUTC:   m.StartUnixUTC,
			EndUnixUTC:     m.EndUnixUTC,
			OrganizerEmail: m.OrganizerEmail,
			MeetLink:       m.MeetLink,
			Participants:   make([]OneParticipantRespBody, 0, len(m.Participants)),
		}
		for _, p := range m.Participants {
			resp.Participants = append(resp.Participants, OneParticipantRespBody{
				Name:  p.Name,
				Email: p.Email,
			})
		}
		return resp
	}

	writeServiceErr := func(w http.ResponseWriter, err error) {
		switch {
		case errors.Is(err, service.ErrMeetingNotFound):
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Meeting not found"))
		case errors.Is(err, service.ErrScheduleConflict):
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte("Schedule conflict"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(err.Error()))
		}
	}

	type CreateMeetingReqBody struct {
		Title           string   `json:"title"`
		StartText       string   `json:"startText"`
		DurationMinutes int      `json:"durationMinutes"`
		Participants    []string `json:"participants"`
		OrganizerEmail  string   `json:"organizerEmail"`
		Recurrence      string   `json:"recurrence"`
	}

	// schedule a new meeting
	muxer.HandleFunc("POST /api/meetings", func(w http.ResponseWriter, r *http.Request) {
		var reqBody CreateMeetingReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		if reqBody.Title == "" || reqBody.StartText == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Please provide a title and start time"))
			return
		}

		meeting, dropped, err := svc.CreateMeeting(r.Context(), service.CreateMeetingRequest{
			Title:            reqBody.Title,
			StartText:        reqBody.StartText,
			Duration:         time.Duration(reqBody.DurationMinutes) * time.Minute,
			ParticipantNames: reqBody.Participants,
			OrganizerEmail:   reqBody.OrganizerEmail,
			Recurrence:       reqBody.Recurrence,
		})
		if err != nil {
			slog.Error("can't create meeting", "error", err)
			writeServiceErr(w, err)
			return
		}

		respBody := struct {
			Meeting             OneMeetingRespBody `json:"meeting"`
			DroppedParticipants []string           `json:"droppedParticipants"`
		}{
			Meeting:             toRespBody(meeting),
			DroppedParticipants: dropped,
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(respBody); err != nil {
			slog.Error("can't encode meeting", "error", err)
		}
	})

	type SearchMeetingsReqBody struct {
		ParticipantName  string `json:"participantName"`
		Department       string `json:"department"`
		FromUnixUTC      int64  `json:"fromUnixUTC"`
		ToUnixUTC        int64  `json:"toUnixUTC"`
		SlotStartUnixUTC int64  `json:"slotStartUnixUTC"`
		SlotEndUnixUTC   int64  `json:"slotEndUnixUTC"`
	}

	// search mirrored meetings
	muxer.HandleFunc("POST /api/meetings/search", func(w http.ResponseWriter, r *http.Request) {
		var reqBody SearchMeetingsReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}

		query := service.SearchQuery{
			ParticipantName: reqBody.ParticipantName,
			Department:      reqBody.Department,
		}
		if reqBody.FromUnixUTC != 0 {
			query.From = time.Unix(reqBody.FromUnixUTC, 0).UTC()
		}
		if reqBody.ToUnixUTC != 0 {
			query.To = time.Unix(reqBody.ToUnixUTC, 0).UTC()
		}
		if reqBody.SlotStartUnixUTC != 0 && reqBody.SlotEndUnixUTC != 0 {
			query.FreeSlotStart = time.Unix(reqBody.SlotStartUnixUTC, 0).UTC()
			query.FreeSlotEnd = time.Unix(reqBody.SlotEndUnixUTC, 0).UTC()
		}

		meetings, err := svc.SearchMeetings(r.Context(), query)
		if err != nil {
			slog.Error("can't search meetings", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't search meetings"))
			return
		}

		respBody := make([]OneMeetingRespBody, 0, len(meetings))
		for _, meeting := range meetings {
			respBody = append(respBody, toRespBody(meeting))
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(respBody); err != nil {
			slog.Error("can't encode meetings", "error", err)
		}
	})

	type RescheduleMeetingReqBody struct {
		RemoteID        string `json:"remoteID"`
		StartText       string `json:"startText"`
		DurationMinutes int    `json:"durationMinutes"`
	}

	// move an existing meeting to a new slot
	muxer.HandleFunc("POST /api/meetings/reschedule", func(w http.ResponseWriter, r *http.Request) {
		var reqBody RescheduleMeetingReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		if reqBody.RemoteID == "" || reqBody.StartText == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Please provide a meeting id and start time"))
			return
		}

		meeting, err := svc.RescheduleMeeting(
			r.Context(),
			reqBody.RemoteID,
			reqBody.StartText,
			time.Duration(reqBody.DurationMinutes)*time.Minute,
		)
		if err != nil {
			slog.Error("can't reschedule meeting", "error", err)
			writeServiceErr(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toRespBody(meeting)); err != nil {
			slog.Error("can't encode meeting", "error", err)
		}
	})

	type CancelMeetingReqBody struct {
		RemoteID string `json:"remoteID"`
	}

	// cancel a meeting remotely and locally
	muxer.HandleFunc("POST /api/meetings/cancel", func(w http.ResponseWriter, r *http.Request) {
		var reqBody CancelMeetingReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		if reqBody.RemoteID == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Please provide a meeting id"))
			return
		}

		if err := svc.CancelMeeting(r.Context(), reqBody.RemoteID); err != nil {
			slog.Error("can't cancel meeting", "error", err)
			writeServiceErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	type DirectMailReqBody struct {
		To      string `json:"to"` // free-form name, resolved against the roster
		Subject string `json:"subject"`
		Message string `json:"message"`
	}

	// email one faculty member by name
	muxer.HandleFunc("POST /api/notify", func(w http.ResponseWriter, r *http.Request) {
		var reqBody DirectMailReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		if reqBody.To == "" || reqBody.Subject == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Please provide a recipient and subject"))
			return
		}

		email, err := svc.SendDirectMail(r.Context(), reqBody.To, reqBody.Subject, reqBody.Message)
		if err != nil {
			slog.Error("can't send direct mail", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(err.Error()))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"sentTo": email}); err != nil {
			slog.Error("can't encode response", "error", err)
		}
	})

	type OneActivityRespBody struct {
		ID               int64  `json:"id"`
		ActionType       string `json:"actionType"`
		MeetingID        int64  `json:"meetingID"`
		PerformedBy      string `json:"performedBy"`
		Details          string `json:"details"`
		CreatedAtUnixUTC int64  `json:"createdAtUnixUTC"`
	}

	// recent audit log entries, newest first
	muxer.HandleFunc("GET /api/activity", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := svc.RecentActivity(r.Context(), limit)
		if err != nil {
			slog.Error("can't get activity log", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't get activity log"))
			return
		}

		respBody := make([]OneActivityRespBody, 0, len(entries))
		for _, entry := range entries {
			respBody = append(respBody, OneActivityRespBody{
				ID:               entry.ID,
				ActionType:       string(entry.ActionType),
				MeetingID:        entry.MeetingID,
				PerformedBy:      entry.PerformedBy,
				Details:          entry.Details,
				CreatedAtUnixUTC: entry.CreatedAtUnixUTC,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(respBody); err != nil {
			slog.Error("can't encode activity log", "error", err)
		}
	})
}
