package bot

import (
	"fmt"
	"strings"

	"github.com/fscarponi/characterai/internal/domain"
	"github.com/fscarponi/characterai/internal/session"
)

const (
	msgLanguageMenu = `Welcome to Character AI Bot! 🤖

Please select your preferred language:

1. English
2. Italian
3. Spanish
4. French

Reply with the number of your choice (1-4).
(Default: English)`

	msgHelp = `Available commands:

/start - Start the bot and choose your language
/help - Show this help message
/create - Create a new character
/select - Select an existing character
/chat <message> - Chat with the selected character
/stopchat - Exit chat mode
/clear - Forget the conversation with the selected character
/status - Show the selected character, language and chat mode
/cancel - Abort character creation

How to use:
1. First create a character using /create or select an existing one with /select
2. Start chatting with your character using /chat followed by your message`

	msgAskName = `Let's create a new character!

Please enter the character's name.
(Type /cancel to abort character creation)`

	msgAskRole = `Great! Now please provide the character's role.
This could be their occupation, position, or primary function (e.g., "Medieval Knight", "Space Explorer", "Village Healer").`

	msgAskBackground = `Excellent! Now please provide the character's background story.
This should include their history, significant events, and any relevant details.`

	msgAskPersonality = `Excellent! Now describe the character's personality traits.
Include their temperament, habits, and typical behavior.`

	msgRetypeConfirm   = "Please type 'confirm' to create the character or /cancel to start over."
	msgCancelled       = "Operation cancelled. You can start over with /create or use other commands."
	msgNothingToCancel = "There is nothing to cancel. Use /create to start creating a character."
	msgNoFlow          = "No active creation flow. Use /create to start creating a character."
	msgDuplicateName   = `A character with this name already exists.

Please enter a different name.
(Type /cancel to abort character creation)`
	msgSaveFailed = "Sorry, the character could not be saved. Type 'confirm' to try again or /cancel to start over."

	msgNoCharacters     = "No characters found. Create one using /create command."
	msgCharacterMissing = "The character id not found..."
	msgEmptyChat        = "Please provide a message to chat."
	msgNoCharacter      = `No character selected. Please either:
1. Select an existing character using /select
2. Create a new character using /create`
	msgChatFailed  = "Sorry, I encountered an error while generating the response. Please try again."
	msgStopChat    = "Chat mode disabled. You can select another character with /select or use other commands."
	msgUseCommands = "Please use one of the available commands. Type /help for more information."
	msgCleared     = "Conversation history cleared. Your next message starts a fresh conversation."
	msgInternal    = "Sorry, something went wrong while handling your message. Please try again or type /help."
	msgBusy        = "I'm still working on your previous messages. Please wait a moment and try again."
	msgStoreFailed = "Sorry, the character list is unavailable right now. Please try again later."
)

func noticeText(kind session.NoticeKind) string {
	switch kind {
	case session.NoticeLanguageMenu:
		return msgLanguageMenu
	case session.NoticeAskName:
		return msgAskName
	case session.NoticeAskRole:
		return msgAskRole
	case session.NoticeAskBackground:
		return msgAskBackground
	case session.NoticeAskPersonality:
		return msgAskPersonality
	case session.NoticeRetypeConfirm:
		return msgRetypeConfirm
	case session.NoticeCancelled:
		return msgCancelled
	case session.NoticeNothingToCancel:
		return msgNothingToCancel
	case session.NoticeDuplicateName:
		return msgDuplicateName
	default:
		return msgNoFlow
	}
}

func languageSetText(language string) string {
	return fmt.Sprintf(`Language set to: %s

This bot allows you to interact with AI-powered characters.

Available commands:
/help - Show available commands
/create - Create a new character
/select - Select an existing character
/stopchat - Exit chat mode and return to character selection

Type /help to get started!`, capitalize(language))
}

func summaryText(f session.Fields) string {
	return fmt.Sprintf(`Please review your character:

Name: %s
Role: %s

Background:
%s

Personality:
%s

Type 'confirm' to create this character or /cancel to start over.`,
		f[session.FieldName], f[session.FieldRole], f[session.FieldBackground], f[session.FieldPersonality])
}

func createdText(name string) string {
	return fmt.Sprintf(`Character created successfully!
You can now start chatting with %s using the /chat command.
The curtain opens!`, name)
}

func characterListText(characters []domain.Character) string {
	var b strings.Builder
	b.WriteString("Available characters:\n\n")
	for i, c := range characters {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Name)
		fmt.Fprintf(&b, "   Background: %s\n\n", c.Background)
	}
	b.WriteString("\nUse /select <number> to choose a character.")
	return b.String()
}

func selectedText(index int) string {
	return fmt.Sprintf("The character %d has been selected successfully.", index)
}

func chatReadyText(name string) string {
	return fmt.Sprintf("You can now start chatting directly with %s! Use /stopchat to exit chat mode.", name)
}

func unknownCommandText(name string) string {
	return fmt.Sprintf("Unknown command /%s. Type /help to see the available commands.", name)
}

func statusText(character *domain.Character, language string, chatMode bool) string {
	var b strings.Builder
	if character == nil {
		b.WriteString("Selected character: none")
	} else {
		b.WriteString("Selected character:\n")
		b.WriteString(character.Preview())
	}
	b.WriteString("\n\nLanguage: " + capitalize(language))
	if chatMode {
		b.WriteString("\nChat mode: on")
	} else {
		b.WriteString("\nChat mode: off")
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
