package models

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewReportID generates "report_<unix-millis>_<5 base36 chars>". The random
// suffix keeps ids unique across devices without coordination.
func NewReportID(now time.Time) string {
	u := uuid.New()
	suffix := strconv.FormatUint(binary.BigEndian.Uint64(u[:8]), 36)
	if len(suffix) < 5 {
		suffix = strings.Repeat("0", 5-len(suffix)) + suffix
	}
	return fmt.Sprintf("report_%d_%s", now.UnixMilli(), suffix[len(suffix)-5:])
}
