package aiscodec

import (
	"strconv"
	"strings"
)

// fragmentKey identifies a multi-part AIVDM/AIVDO group in flight.
type fragmentKey struct {
	channel string
	seqID   string
}

// reassembler buffers AIVDM/AIVDO fragments until a complete payload is
// available, mirroring the gpsd-documented AIVDM/AIVDO protocol: a
// sentence carries total-fragment-count, this-fragment-number, an
// optional sequential message id (shared by all fragments of one AIS
// message) and a radio channel.
type reassembler struct {
	pending map[fragmentKey][]string
}

func newReassembler() *reassembler {
	return &reassembler{pending: make(map[fragmentKey][]string)}
}

// add feeds one AIVDM/AIVDO sentence's fields (everything after the
// "AIVDM"/"AIVDO" identifier) into the reassembler. It returns the
// concatenated payload and total fill-bit count once a group completes,
// or ok=false while more fragments are still expected.
func (r *reassembler) add(fields []string) (payload string, fillBits int, ok bool) {
	if len(fields) < 6 {
		return "", 0, false
	}

	total, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil || total < 1 {
		return "", 0, false
	}
	num, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil || num < 1 {
		return "", 0, false
	}
	seqID := fields[2]
	channel := fields[3]
	fragPayload := fields[4]
	fillStr := fields[5]
	if idx := strings.IndexByte(fillStr, '*'); idx >= 0 {
		fillStr = fillStr[:idx]
	}
	fill, err := strconv.Atoi(strings.TrimSpace(fillStr))
	if err != nil {
		fill = 0
	}

	if total == 1 {
		return fragPayload, fill, true
	}

	key := fragmentKey{channel: channel, seqID: seqID}
	parts := r.pending[key]
	if num == 1 {
		parts = make([]string, total)
	}
	if parts == nil || len(parts) != total || num > total {
		return "", 0, false
	}
	parts[num-1] = fragPayload
	r.pending[key] = parts

	if num < total {
		return "", 0, false
	}

	for _, p := range parts {
		if p == "" {
			return "", 0, false
		}
	}

	delete(r.pending, key)
	return strings.Join(parts, ""), fill, true
}
