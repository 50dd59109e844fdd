package models

import (
	"fmt"
	"sort"
	"strings"
)

// Skin is a branding profile for the chat front end.
// All skins drive the same session controller; only text and colors differ.
type Skin struct {
	Name              string
	Title             string
	Tagline           string
	AssistantName     string
	Greeting          string
	ConnectivityError string
	Footer            string
	Placeholder       string

	// Hex colors
	Primary   string // header, bot label
	UserColor string // user label and bubble border
	Accent    string // citation label
	Loading   []string
}

// SkinEAC is the official East African Community branding
var SkinEAC = Skin{
	Name:              "eac",
	Title:             "East African Community",
	Tagline:           "One People, One Destiny",
	AssistantName:     "EAC Assistant",
	Greeting:          "Jambo! I am the EAC Digital Assistant. How can I help you with information regarding the Community today?",
	ConnectivityError: "I am having trouble connecting to the EAC servers. Please try again later.",
	Footer:            "Official EAC Digital Tool. Information is retrieved from the EAC Factsheet and Official Website.",
	Placeholder:       "Type your inquiry here...",
	Primary:           "#008C00",
	UserColor:         "#0066CC",
	Accent:            "#FFD700",
	Loading:           []string{"#008C00", "#FFD700", "#D21034"},
}

// SkinAssistant is a neutral branding over the same backend
var SkinAssistant = Skin{
	Name:              "assistant",
	Title:             "EAC Digital Assistant",
	Tagline:           "Ask about the East African Community",
	AssistantName:     "Assistant",
	Greeting:          "Hello! Ask me anything about the East African Community.",
	ConnectivityError: "Sorry, I could not reach the server. Please try again later.",
	Footer:            "Answers may cite their source.",
	Placeholder:       "Type your message here...",
	Primary:           "#7aa2f7",
	UserColor:         "#9ece6a",
	Accent:            "#e0af68",
	Loading:           []string{"#7aa2f7", "#bb9af7", "#7dcfff"},
}

// DefaultSkin is used when no skin is configured
var DefaultSkin = SkinEAC

var skins = map[string]Skin{
	SkinEAC.Name:       SkinEAC,
	SkinAssistant.Name: SkinAssistant,
}

// SkinFromName returns a built-in skin by name (case-insensitive).
// An empty name yields DefaultSkin.
func SkinFromName(name string) (Skin, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultSkin, nil
	}
	s, ok := skins[name]
	if !ok {
		return Skin{}, fmt.Errorf("unknown skin %q (available: %s)", name, strings.Join(SkinNames(), ", "))
	}
	return s, nil
}

// SkinNames lists the built-in skin names, sorted
func SkinNames() []string {
	names := make([]string, 0, len(skins))
	for n := range skins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
