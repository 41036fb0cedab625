package transcript

import "strconv"

// unknownSpeakerPrefix is the fallback label for speaker ids with no
// directory entry. The printed number matches the one-based directory key.
const unknownSpeakerPrefix = "Unknown Speaker "

// ResolveSpeaker maps a zero-based caption speaker id to a display name via
// the one-based directory. A present entry is returned unmodified, even if it
// is the empty string: an empty mapped name is still "found" and is distinct
// from a missing key. Pure, no side effects.
func ResolveSpeaker(speakerID int, dir SpeakerDirectory) string {
	key := strconv.Itoa(speakerID + 1)
	if name, ok := dir[key]; ok {
		return name
	}
	return unknownSpeakerPrefix + key
}
