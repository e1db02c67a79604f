// Package export renders Google entities in the standard interchange
// formats: events as iCalendar and contacts as vCard 4.0.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"gdata/internal/models"
)

// ProductID identifies the producer of exported calendars.
const ProductID = "-//gdata//EN"

// EventUID returns the iCalendar UID of ev. Saved events get a UID derived from
// their remote id so repeated exports agree; unsaved events get a random one.
func EventUID(ev *models.Event) string {
	if ev.ID == "" {
		return uuid.NewString()
	}
	return ev.ID + "@google.com"
}

// NewCalendar returns an empty VCALENDAR with version and product id set.
func NewCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	return cal
}

// EventComponent converts ev into a VEVENT with the given UID. stamp becomes
// DTSTAMP.
func EventComponent(ev *models.Event, uid string, stamp time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, uid)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	setEventTime(ve, ical.PropDateTimeStart, ev.Start)
	setEventTime(ve, ical.PropDateTimeEnd, ev.End)

	if ev.Summary != "" {
		ve.Props.SetText(ical.PropSummary, ev.Summary)
	}
	if ev.Description != "" {
		ve.Props.SetText(ical.PropDescription, ev.Description)
	}
	if ev.Status != "" {
		ve.Props.SetText(ical.PropStatus, strings.ToUpper(ev.Status))
	}
	// "default" defers to the calendar and has no iCalendar equivalent.
	if ev.Visibility != "" && ev.Visibility != "default" {
		ve.Props.SetText(ical.PropClass, strings.ToUpper(ev.Visibility))
	}
	return ve
}

func setEventTime(ve *ical.Component, name string, t models.EventTime) {
	if t.IsZero() {
		return
	}
	if t.AllDay {
		ve.Props.SetDate(name, t.Time)
		return
	}
	ve.Props.SetDateTime(name, t.Time.UTC())
}

// WriteICS writes events as a single VCALENDAR.
func WriteICS(w io.Writer, events []*models.Event, stamp time.Time) error {
	cal := NewCalendar()
	for _, ev := range events {
		cal.Children = append(cal.Children, EventComponent(ev, EventUID(ev), stamp))
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}
