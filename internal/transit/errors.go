package transit

import (
	"errors"
	"fmt"
)

// Kind identifies one user-facing failure condition.
type Kind string

const (
	LineNotRecognized   Kind = "nonexistent_line"
	BusNotRecognized    Kind = "nonexistent_bus"
	StationNotFound     Kind = "rail_station_name_not_found"
	StopNameNotFound    Kind = "stop_name_not_found"
	BadStopID           Kind = "bad_stop_id"
	StopRouteMismatch   Kind = "stop_id_not_found"
	NoDirectRoute       Kind = "no_direct_route"
	InvalidDirection    Kind = "invalid_direction"
	NotInCoverageArea   Kind = "not_in_coverage_area"
	StationNotInSystem  Kind = "rail_station_not_in_system"
	StationClosed       Kind = "tube_station_closed"
	UpstreamUnavailable Kind = "tfl_server_down"

	NoBusesShown             Kind = "no_buses_shown"
	NoBusesShownTo           Kind = "no_buses_shown_to"
	NoTrainsShown            Kind = "no_trains_shown"
	NoTrainsShownTo          Kind = "no_trains_shown_to"
	NoTrainsShownInDirection Kind = "no_trains_shown_in_direction"
)

var messages = map[Kind]string{
	LineNotRecognized:   "I couldn't recognise that line (%s) as a Tube line",
	BusNotRecognized:    "I couldn't recognise the number you gave me (%s) as a London bus",
	StationNotFound:     "I couldn't recognise that station (%s) as being on the %s",
	StopNameNotFound:    "I couldn't find any bus stops on the %s route by that name (%s)",
	BadStopID:           "I couldn't recognise the number you gave me (%s) as a valid bus stop ID",
	StopRouteMismatch:   "The %s route doesn't call at the stop with ID %s",
	NoDirectRoute:       "There is no direct route between %s and %s on the %s",
	InvalidDirection:    "I couldn't recognise that direction (%s)",
	NotInCoverageArea:   "You do not appear to be located in the %s",
	StationNotInSystem:  "TfL don't provide live departure data for %s station :(",
	StationClosed:       "%s station is currently closed %s",
	UpstreamUnavailable: "I can't access TfL's servers right now - they appear to be down :(",

	NoBusesShown:             "There are no %s buses currently shown from your stop",
	NoBusesShownTo:           "There are no %s buses currently shown from your stop to %s",
	NoTrainsShown:            "There are no %s trains currently shown going from %s",
	NoTrainsShownTo:          "There are no %s trains currently shown going from %s to %s",
	NoTrainsShownInDirection: "There are no %s %s trains currently shown going from %s",
}

// userMessageLimit leaves room for a greeting and a handle in a short reply.
const userMessageLimit = 115

// Error is a resolution or service failure that is reported to the user.
type Error struct {
	Kind Kind
	Args []string
}

// ErrUpstreamUnavailable matches any UpstreamUnavailable error with errors.Is.
var ErrUpstreamUnavailable = &Error{Kind: UpstreamUnavailable}

// NewError builds an Error of the given kind. It panics on a kind with no message,
// which can only happen through a programming mistake.
func NewError(kind Kind, args ...string) *Error {
	if _, ok := messages[kind]; !ok {
		panic(fmt.Sprintf("transit: unknown error kind %q", kind))
	}
	return &Error{Kind: kind, Args: args}
}

func (e *Error) Error() string {
	args := make([]any, len(e.Args))
	for i, a := range e.Args {
		args[i] = a
	}
	msg := messages[e.Kind]
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Is reports whether target is an Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// UserMessage is the apology-prefixed text sent back to the requester.
func (e *Error) UserMessage() string {
	msg := e.Error()
	if r := []rune(msg); len(r) > userMessageLimit {
		msg = string(r[:userMessageLimit])
	}
	return "Sorry! " + msg
}

// IsFatal reports whether err must abort a whole multi-route request rather than
// being reported against one route.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}

// KindOf returns the Kind of err, or "" if err is not an Error.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// Upstream wraps a transport or decode failure as UpstreamUnavailable while keeping
// the cause available to errors.Unwrap for logging.
func Upstream(cause error) error {
	return &upstreamError{cause: cause}
}

type upstreamError struct {
	cause error
}

func (u *upstreamError) Error() string {
	return fmt.Sprintf("%s: %v", ErrUpstreamUnavailable.Error(), u.cause)
}

func (u *upstreamError) Unwrap() []error {
	return []error{ErrUpstreamUnavailable, u.cause}
}
