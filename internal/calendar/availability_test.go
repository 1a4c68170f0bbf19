package calendar

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func at(hhmm string) time.Time {
    t, err := time.Parse("2006-01-02 15:04", "2026-03-01 "+hhmm)
    if err != nil {
        panic(err)
    }
    return t
}

func TestOverlaps(t *testing.T) {
    winStart, winEnd := at("10:00"), at("11:00")

    cases := []struct {
        name       string
        busyStart  string
        busyEnd    string
        wantsClash bool
    }{
        {"busy inside window", "10:15", "10:45", true},
        {"busy straddles end", "10:30", "11:30", true},
        {"busy covers window", "09:00", "12:00", true},
        {"busy before window", "09:00", "09:30", false},
        {"busy after window", "11:30", "12:00", false},
        {"busy ends at window start", "09:00", "10:00", false},
        {"busy starts at window end", "11:00", "12:00", false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            got := Overlaps(at(tc.busyStart), at(tc.busyEnd), winStart, winEnd)
            assert.Equal(t, tc.wantsClash, got)
        })
    }
}
