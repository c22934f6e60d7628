package models

import id "presence/pkg/domain"

// BoardDay is one column of the board.
type BoardDay struct {
	Label string `json:"label"`
	Date  string `json:"date"`
}

// BoardRow is one member's resolved week. Statuses align with Board.Days.
type BoardRow struct {
	Initials    id.Initials `json:"personIdentifier"`
	DisplayName string      `json:"displayName"`
	Level       string      `json:"level,omitempty"`
	Statuses    []string    `json:"statuses"`
	Confirmed   bool        `json:"confirmed"`
}

// Board is the resolved status grid for one week.
type Board struct {
	WeekStart string     `json:"weekStart"`
	WeekEnd   string     `json:"weekEnd"`
	ISOWeek   int        `json:"isoWeek"`
	Days      []BoardDay `json:"days"`
	Rows      []BoardRow `json:"rows"`
}

// TodayEntry is one member in a Today group.
type TodayEntry struct {
	Initials    id.Initials `json:"personIdentifier"`
	DisplayName string      `json:"displayName"`
}

// Today groups members by status for a single day.
type Today struct {
	Date   string       `json:"date"`
	Day    string       `json:"day"`
	Office []TodayEntry `json:"office"`
	Home   []TodayEntry `json:"home"`
	Away   []TodayEntry `json:"away"`
}
