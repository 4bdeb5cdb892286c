package config

// Messages holds the user-facing texts. Fields taking arguments are
// fmt format strings; the comment lists the verbs in order.
type Messages struct {
	WelcomeBack   string // first name
	WelcomeNew    string // first name
	WelcomeGroup  string
	Help          string
	CheckUserErr  string
	CreateUserErr string
	GeneralErr    string

	AddToGroupButton string
	RegisterButton   string

	PinText     string
	PinButton   string
	PinFallback string // bot username

	BalanceHeader string
	BalanceBody   string // breakdown url

	ChatReady     string
	ChatInitError string

	ChooseUsersToAdd  string // chat id
	SelectUsersButton string
	AddMemberSummary  string // added names, chat id, failed names

	ChaseGroupOnly string
	ChaseSelect    string
	ChaseButton    string
	ChaseReminder  string // requester
	ChaseBlocked   string // target
	ChaseNoChat    string // target
	ChaseSent      string // target
}

// DefaultMessages returns the built-in texts.
func DefaultMessages() Messages {
	return Messages{
		WelcomeBack: "Welcome back to SplitLeh, %s! 🌟 We're thrilled to see you again.\n\n" +
			"Add me to a group and I'll keep track of who owes whom.\n\n🚀 Start splitting!",
		WelcomeNew: "Welcome to SplitLeh, %s! 🎉\n\n" +
			"Say goodbye to awkward bill-splitting and hello to hassle-free group expenses!\n\n" +
			"How to use me?\n🤝 Add me to a group to start 🤝",
		WelcomeGroup: "Hey there homies 👋\n\n" +
			"Let me help you guys manage your shared expenses!\n\n" +
			"🤔 First time seeing me?\n⬇️ Register to get started ⬇️",
		Help: "Forgot how to use the bot? 🤣\n\n" +
			"Here's a quick guide to get you started:\n\n" +
			"1. /start in a private chat to register\n" +
			"2. Add me to your group and run /pin there\n" +
			"3. Log expenses in the 💵 Expenses app\n" +
			"4. /balance in the group to see who owes whom\n" +
			"5. /chase in a private chat to remind someone to pay up",
		CheckUserErr:  "⚠️ Something went wrong checking user, please try again.",
		CreateUserErr: "⚠️ Something went wrong creating user, please try again.",
		GeneralErr:    "⚠️ Something went wrong, please try again.",

		AddToGroupButton: "Add to group",
		RegisterButton:   "Register",

		PinText:     "🤑 Split your expense leh 🤑",
		PinButton:   "💵 Expenses",
		PinFallback: "📌 Pin this for quick access, or make me admin and run /pin@%s again to pin automatically",

		BalanceHeader: "*Current Balances*:",
		BalanceBody:   "Open the [🧾 Breakdown 🧾](%s) to see who owes whom\\.",

		ChatReady:     "🎉 Hello friends, I am here to help you split your expenses 💸!",
		ChatInitError: "⚠️ Failed to properly initialize the chat. Please try again by removing and re-adding the bot.",

		ChooseUsersToAdd:  "Choose users to add to group:\n 🧑‍🧒‍🧒 %d 🧑‍🧒‍🧒",
		SelectUsersButton: "Select Users 🧑‍🧒‍🧒",
		AddMemberSummary:  "Added %s to the group:\n 🧑‍🧒‍🧒 %d 🧑‍🧒‍🧒\n\nFailed to add %s",

		ChaseGroupOnly: "⚠️ The 'chase' command is only available in your private chat with the bot",
		ChaseSelect:    "Select user",
		ChaseButton:    "Choose user",
		ChaseReminder:  "🤬💩 REMINDER: PAY BACK %s LEH",
		ChaseBlocked:   "⚠️ Failed to send message to %s as it was blocked.",
		ChaseNoChat:    "⚠️ Failed to send message to %s as they do not have conversation yet.",
		ChaseSent:      "✅ Successfully reminded %s to pay up!",
	}
}
