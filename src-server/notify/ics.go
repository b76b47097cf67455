package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sam/src-server/model"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

const icsProdID = "-//S.A.M//Meeting Scheduler//EN"

// GenerateICS renders a meeting as an iCalendar invitation and writes
// it under outputDir. Returns the path of the written file so the
// mailer can attach it.
func GenerateICS(meeting model.Meeting, outputDir string) (string, error) {
	if meeting.StartUnixUTC == 0 || meeting.EndUnixUTC == 0 {
		return "", fmt.Errorf("GenerateICS: meeting %q has no start or end time", meeting.Title)
	}
	if meeting.EndUnixUTC <= meeting.StartUnixUTC {
		return "", fmt.Errorf("GenerateICS: meeting %q ends before it starts", meeting.Title)
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uuid.NewString()+"@sam")
	event.Props.SetText(ical.PropSummary, meeting.Title)
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, meeting.StartTime())
	event.Props.SetDateTime(ical.PropDateTimeEnd, meeting.EndTime())
	if meeting.MeetLink != "" {
		event.Props.SetText(ical.PropLocation, meeting.MeetLink)
	}
	if meeting.OrganizerEmail != "" {
		organizer := ical.NewProp(ical.PropOrganizer)
		organizer.Value = "mailto:" + meeting.OrganizerEmail
		event.Props.Set(organizer)
	}
	for _, participant := range meeting.Participants {
		attendee := ical.NewProp(ical.PropAttendee)
		attendee.Value = "mailto:" + participant.Email
		if participant.Name != "" {
			attendee.Params.Set(ical.ParamCommonName, participant.Name)
		}
		attendee.Params.Set(ical.ParamRole, "REQ-PARTICIPANT")
		event.Props.Add(attendee)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, icsProdID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Children = append(cal.Children, event.Component)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("GenerateICS: can't create %s: %w", outputDir, err)
	}
	path := filepath.Join(outputDir, fmt.Sprintf("meeting-%s.ics", uuid.NewString()))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("GenerateICS: can't create %s: %w", path, err)
	}
	defer file.Close()

	if err := ical.NewEncoder(file).Encode(cal); err != nil {
		return "", fmt.Errorf("GenerateICS: can't encode calendar: %w", err)
	}
	return path, nil
}
