package ui

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	normalDim       = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray            = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray         = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	darkGray        = lipgloss.AdaptiveColor{Light: "#DDDADA", Dark: "#3C3C3C"}
	brightGray      = lipgloss.AdaptiveColor{Light: "#847A85", Dark: "#979797"}
	cream           = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	yellowGreen     = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"}
	fuchsia         = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	green           = lipgloss.Color("#04B575")
	red             = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	amber           = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFC857"}
	highlightBg     = lipgloss.AdaptiveColor{Light: "#FFF3B0", Dark: "#5C4B00"}
	selectedBg      = lipgloss.AdaptiveColor{Light: "#C9F2E3", Dark: "#1C5C45"}
	mintGreen       = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen       = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}
)

// Base styles.
var (
	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(gray)

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ECFD65")).
			Background(fuchsia).
			Bold(true)
)

// Lesson styles.
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(fuchsia).Render
	subtitle       = lipgloss.NewStyle().Foreground(brightGray).Render
	sectionHeading = lipgloss.NewStyle().Bold(true).Foreground(yellowGreen).Render

	sentenceStyle = lipgloss.NewStyle()

	sentenceSelectedStyle = lipgloss.NewStyle().
				Background(selectedBg).
				Bold(true)

	sentenceFocusedStyle = lipgloss.NewStyle().Underline(true)

	translationStyle = lipgloss.NewStyle().Foreground(brightGray)

	translationHighlightStyle = lipgloss.NewStyle().
					Foreground(lipgloss.AdaptiveColor{Light: "#222222", Dark: "#FFFDF5"}).
					Background(highlightBg)

	implicationStyle = lipgloss.NewStyle().Foreground(normalDim).Italic(true)

	implicationPlayingStyle = lipgloss.NewStyle().
				Foreground(yellowGreen).
				Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(midGray).
			PaddingLeft(1)

	buttonStyle = lipgloss.NewStyle().
			Foreground(brightGray).
			Background(darkGray).
			Padding(0, 1)

	buttonLoadingStyle = buttonStyle.
				Foreground(lipgloss.Color("#1B1B1B")).
				Background(amber)

	buttonPlayingStyle = buttonStyle.
				Foreground(cream).
				Background(green)

	focusMarker    = lipgloss.NewStyle().Foreground(fuchsia).Render("▌")
	noFocusMarker  = " "
	keyHintStyle   = lipgloss.NewStyle().Foreground(midGray).Render
	vocabWordStyle = lipgloss.NewStyle().Bold(true).Render
	phoneticStyle  = lipgloss.NewStyle().Foreground(gray).Render
)

// Status bar styles.
var (
	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarPlaybackStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarMessageHelpStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("#B6FFE4")).
					Background(green).
					Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render
)

// Picker styles.
var (
	pickerTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFDF5")).
				Background(lipgloss.Color("#5A56E0")).
				Padding(0, 1)

	pickerSelectedNoteStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#f684ff", Dark: "#AD58B4"}).
				Render

	pickerNoteStyle = lipgloss.NewStyle().Foreground(gray).Render
	pickerDimStyle  = lipgloss.NewStyle().Foreground(normalDim).Render
)

func logoView() string {
	return logoStyle.Render(" Lectio ")
}
