package aiscodec

import (
	"errors"
	"fmt"
)

// ErrEncodeFailure is returned when encoding a Class A position report
// does not fit in a single sentence, per the spec's EncodeFailure kind.
var ErrEncodeFailure = errors.New("aiscodec: position report did not encode to exactly one sentence")

// ErrUnsupportedEncoding is returned for outbound encoding requests this
// codec does not support (e.g. non-Class-A transceiver position reports).
var ErrUnsupportedEncoding = errors.New("aiscodec: unsupported outbound encoding")

const sentencePayloadLimit = 60 // characters per AIVDM/AIVDO fragment

// ToSentences encodes msg into one or more AIVDM/AIVDO sentence bodies
// (without the leading '$'/'!' or trailing newline; callers add framing
// and checksum via nmea.Checksum, matching how an outbound transport
// would hand this to a wire writer). id selects AIVDM vs AIVDO.
func (c *Codec) ToSentences(msg Message, id SentenceID) ([]string, error) {
	switch m := msg.(type) {
	case PositionReport:
		return encodePositionReport(m, id)
	case SafetyBroadcastMessage:
		return encodeSafetyBroadcast(m, id)
	case AddressedSafetyMessage:
		return encodeAddressedSafetyMessage(m, id)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedEncoding, msg)
	}
}

func encodePositionReport(m PositionReport, id SentenceID) ([]string, error) {
	w := &bitWriter{}
	w.putUint(1, 6)           // message type 1 (Class A)
	w.putUint(0, 2)           // repeat indicator
	w.putUint(uint64(m.MMSI), 30)
	w.putUint(uint64(m.NavigationStatus), 4)
	if m.RateOfTurnValid {
		w.putInt(int64(m.RateOfTurnRaw), 8)
	} else {
		w.putInt(unavailRateOfTurn, 8)
	}
	if m.SOGValid {
		w.putUint(uint64(m.SOGKnots/0.1+0.5), 10)
	} else {
		w.putUint(unavailSOG, 10)
	}
	w.putBool(m.PositionAccurate)
	if m.PositionValid {
		w.putInt(int64(m.Longitude*600000), 28)
		w.putInt(int64(m.Latitude*600000), 27)
	} else {
		w.putInt(unavailLongitude, 28)
		w.putInt(unavailLatitude, 27)
	}
	if m.COGValid {
		w.putUint(uint64(m.COGDegrees/0.1+0.5), 12)
	} else {
		w.putUint(unavailCOG, 12)
	}
	if m.HeadingValid {
		w.putUint(uint64(m.TrueHeading), 9)
	} else {
		w.putUint(unavailHeading, 9)
	}
	w.putUint(uint64(m.TimestampSecond), 6)
	w.putUint(0, 2) // maneuver indicator
	w.putUint(0, 3) // spare
	w.putBool(m.RAIM)
	w.putUint(0, 19) // radio status

	payload, fill := encodeArmor(w.bits)
	sentence := fmt.Sprintf("AI%s,1,1,,%s,%s,%d", id, channelLetter(id), payload, fill)

	if len(payload) > sentencePayloadLimit {
		return nil, ErrEncodeFailure
	}
	return []string{sentence}, nil
}

func encodeSafetyBroadcast(m SafetyBroadcastMessage, id SentenceID) ([]string, error) {
	w := &bitWriter{}
	w.putUint(14, 6)
	w.putUint(0, 2)
	w.putUint(uint64(m.SourceMMSI), 30)
	w.putUint(0, 2) // spare

	textLen := ((len(m.Text) * 6) + 5) / 6 * 6
	w.putText(m.Text, textLen)

	return fragmentToSentences(w.bits, id)
}

func encodeAddressedSafetyMessage(m AddressedSafetyMessage, id SentenceID) ([]string, error) {
	w := &bitWriter{}
	w.putUint(12, 6)
	w.putUint(0, 2)
	w.putUint(uint64(m.SourceMMSI), 30)
	w.putUint(0, 2) // sequence number
	w.putUint(uint64(m.DestMMSI), 30)
	w.putBool(false) // retransmit
	w.putUint(0, 1)  // spare

	textLen := ((len(m.Text) * 6) + 5) / 6 * 6
	w.putText(m.Text, textLen)

	return fragmentToSentences(w.bits, id)
}

// fragmentToSentences packs a bit vector into as many AIVDM/AIVDO
// fragments as required to respect sentencePayloadLimit.
func fragmentToSentences(bits []byte, id SentenceID) ([]string, error) {
	payload, fill := encodeArmor(bits)

	if len(payload) <= sentencePayloadLimit {
		return []string{fmt.Sprintf("AI%s,1,1,,%s,%s,%d", id, channelLetter(id), payload, fill)}, nil
	}

	var sentences []string
	total := (len(payload) + sentencePayloadLimit - 1) / sentencePayloadLimit
	for i := 0; i < total; i++ {
		start := i * sentencePayloadLimit
		end := start + sentencePayloadLimit
		thisFill := 0
		if end >= len(payload) {
			end = len(payload)
			thisFill = fill
		}
		sentences = append(sentences, fmt.Sprintf("AI%s,%d,%d,1,%s,%s,%d",
			id, total, i+1, channelLetter(id), payload[start:end], thisFill))
	}
	return sentences, nil
}

func channelLetter(id SentenceID) string {
	if id == SentenceIDVDM {
		return "A"
	}
	return "A"
}
