package generation

import "strings"

// Channel is where an outreach message will be sent.
type Channel string

const (
	ChannelColdEmail          Channel = "cold-email"
	ChannelFollowUpEmail      Channel = "follow-up-email"
	ChannelReferralRequest    Channel = "referral-request"
	ChannelLinkedInDM         Channel = "linkedin-dm"
	ChannelLinkedInConnection Channel = "linkedin-connection"
	ChannelTwitterDM          Channel = "twitter-dm"
)

var channelGuidance = map[Channel]string{
	ChannelColdEmail:          "A cold email to a hiring manager or recruiter who does not know the candidate. Needs a specific, non-generic subject line.",
	ChannelFollowUpEmail:      "A polite follow-up email after an application or interview. Reference the prior contact briefly.",
	ChannelReferralRequest:    "An email asking a contact for a referral. Make it easy to say yes and offer to send materials.",
	ChannelLinkedInDM:         "A LinkedIn direct message to someone already connected. Conversational, no subject line, under 120 words.",
	ChannelLinkedInConnection: "A LinkedIn connection request note. Very short, ideally under 280 characters, no subject line.",
	ChannelTwitterDM:          "A direct message on X/Twitter. Casual but professional, under 80 words, no subject line.",
}

// ParseChannel returns the channel for raw, or false when unknown.
func ParseChannel(raw string) (Channel, bool) {
	c := Channel(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := channelGuidance[c]
	return c, ok
}

// IsEmailLike reports channels that carry a subject line.
func (c Channel) IsEmailLike() bool {
	switch c {
	case ChannelColdEmail, ChannelFollowUpEmail, ChannelReferralRequest:
		return true
	}
	return false
}

// Tone is the requested voice of an outreach message.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneEnthusiastic Tone = "enthusiastic"
	ToneConcise      Tone = "concise"
)

var toneGuidance = map[Tone]string{
	ToneProfessional: "Professional and respectful.",
	ToneFriendly:     "Warm and approachable while staying professional.",
	ToneEnthusiastic: "Energetic and genuinely excited about the role.",
	ToneConcise:      "Brief and to the point; cut every unnecessary word.",
}

// ParseTone returns the tone for raw, or false when unknown.
func ParseTone(raw string) (Tone, bool) {
	t := Tone(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := toneGuidance[t]
	return t, ok
}
