package ui

type ConfirmationState struct {
	Active  bool
	Title   string
	Message string
}

const confirmationWidth = 60

func RenderConfirmationModal(state ConfirmationState, width, height int) string {
	modalWidth := confirmationWidth
	if width < modalWidth+10 {
		modalWidth = width - 10
	}

	return RenderThreeSectionModal(
		state.Title,
		centeredLines(state.Message, modalWidth),
		FormatFooter("y", "Yes", "n", "No"),
		ModalTypeWarning,
		confirmationWidth,
		width,
		height,
	)
}

func clearChatConfirmation() ConfirmationState {
	return ConfirmationState{
		Active:  true,
		Title:   "Clear conversation?",
		Message: "This resets the conversation and the assistant's memory of it.\nThis cannot be undone.",
	}
}
