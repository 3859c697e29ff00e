package api

import (
	"encoding/json"
	"strings"

	"gopkg.in/guregu/null.v4"
)

type Sport string

const (
	SportBadminton  Sport = "badminton"
	SportSquash     Sport = "squash"
	SportFootball   Sport = "football"
	SportBasketball Sport = "basketball"
	SportCricket    Sport = "cricket"
)

type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var SportChoices = []Choice{
	{Value: string(SportBadminton), Label: "Badminton"},
	{Value: string(SportSquash), Label: "Squash"},
	{Value: string(SportFootball), Label: "Football"},
	{Value: string(SportBasketball), Label: "Basketball"},
	{Value: string(SportCricket), Label: "Cricket"},
}

var BranchChoices = []Choice{
	{Value: "CSE", Label: "Computer Science"},
	{Value: "ECE", Label: "Electronics & Communication"},
	{Value: "EEE", Label: "Electrical & Electronics"},
	{Value: "MECH", Label: "Mechanical"},
	{Value: "CIVIL", Label: "Civil"},
}

var CourseChoices = []Choice{
	{Value: "BTECH", Label: "B.Tech"},
	{Value: "MTECH", Label: "M.Tech"},
	{Value: "PHD", Label: "Ph.D"},
}

// ParseSport matches a sport value case-insensitively.
func ParseSport(input string) (Sport, bool) {
	needle := strings.ToLower(strings.TrimSpace(input))
	for _, choice := range SportChoices {
		if choice.Value == needle {
			return Sport(choice.Value), true
		}
	}
	return "", false
}

func (s Sport) Label() string {
	return choiceLabel(SportChoices, string(s))
}

func BranchLabel(value string) string {
	return choiceLabel(BranchChoices, value)
}

func CourseLabel(value string) string {
	return choiceLabel(CourseChoices, value)
}

func IsChoice(choices []Choice, value string) bool {
	for _, choice := range choices {
		if choice.Value == value {
			return true
		}
	}
	return false
}

func choiceLabel(choices []Choice, value string) string {
	for _, choice := range choices {
		if choice.Value == value {
			return choice.Label
		}
	}
	return value
}

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusCompleted BookingStatus = "COMPLETED"
)

var BookingStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}

// ParseBookingStatus accepts either casing the backend has used.
func ParseBookingStatus(input string) (BookingStatus, bool) {
	status := BookingStatus(strings.ToUpper(strings.TrimSpace(input)))
	for _, known := range BookingStatuses {
		if status == known {
			return status, true
		}
	}
	return "", false
}

func (s *BookingStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = BookingStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return nil
}

func (s BookingStatus) Label() string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(string(s))
	return strings.ToUpper(lower[:1]) + lower[1:]
}

type Booking struct {
	ID          int64         `json:"id"`
	Sport       Sport         `json:"sport"`
	BookingDate string        `json:"booking_date"`
	TimeSlot    string        `json:"time_slot"`
	Status      BookingStatus `json:"status"`
	Notes       null.String   `json:"notes"`
	CreatedAt   string        `json:"created_at"`
	UpdatedAt   string        `json:"updated_at,omitempty"`
}

type CreateBookingRequest struct {
	Sport       Sport  `json:"sport"`
	BookingDate string `json:"booking_date"`
	TimeSlot    string `json:"time_slot"`
	Notes       string `json:"notes"`
}

type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Mobile   string `json:"mobile"`
	Branch   string `json:"branch"`
	Course   string `json:"course"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Mobile    string `json:"mobile"`
	Branch    string `json:"branch"`
	Course    string `json:"course"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type AuthResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

type availableSlotsResponse struct {
	AvailableSlots *[]string `json:"available_slots"`
}
