package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/spf13/pflag"
)

// zoneFlag is a pflag.Value accepting a time zone name in any case.
type zoneFlag struct {
	zone domain.TimeZone
}

var _ pflag.Value = (*zoneFlag)(nil)

func (f *zoneFlag) String() string { return string(f.zone) }

func (f *zoneFlag) Set(s string) error {
	tz := domain.TimeZone(strings.ToUpper(strings.TrimSpace(s)))
	if !tz.Valid() {
		return fmt.Errorf("must be one of morning, afternoon, evening, night")
	}
	f.zone = tz
	return nil
}

func (f *zoneFlag) Type() string { return "zone" }

func (f *zoneFlag) isSet() bool { return f.zone != "" }
