package bot

const (
	termsURL   = "https://telegra.ph/PRIVACY-POLICY-11-09-407"
	privacyURL = "https://telegra.ph/PRIVACY-POLICY-11-09-406"

	defaultBotName = "Sheet Bot"
)

const welcomeTemplate = "Welcome to *%s*! 🤖\n\n" +
	"Please note that by using this bot, you agree to our Terms of Service and Privacy Policy.\n\n" +
	"✅ *Terms of Service:* [Read Here](" + termsURL + ")\n" +
	"🔒 *Privacy Policy:* [Read Here](" + privacyURL + ")\n\n" +
	"*Available Features:*\n" +
	"📂 `/view` - Reply to an Excel file to view its content (Rows 1-%d, etc.).\n" +
	"🔗 `/addlink <list>` - Convert a list of numbers to t.me join links.\n" +
	"👤 `/addusername <list>` - Convert a list of usernames to t.me links.\n" +
	"💬 `@%s <list>` - Generate links inline in any chat.\n\n" +
	"_Send me an Excel file or use a command to get started!_"

const (
	textSupportButton = "📞 Customer Service"

	textPromptNumbers   = "Send me the phone numbers, separated by commas, spaces or new lines.\nExample: `+88017xxx, +88019xxx`"
	textPromptUsernames = "Send me the usernames, separated by commas, spaces or new lines.\nExample: `user1, @user2`"
	textCancelled       = "Cancelled."
	textNothingToCancel = "Nothing to cancel."

	textNoNumbers   = "No valid numbers found."
	textNoUsernames = "No valid usernames found."
	headerNumbers   = "Here are your number links:"
	headerUsernames = "Here are your username links:"

	textViewUsage      = "Please reply to an Excel (`.xlsx`/`.xls`) file with `/view`, or just send me the file."
	textFileReceived   = "✅ File received! Processing..."
	textFileEmpty      = "⚠️ The Excel file is empty."
	textFileErrorTmpl  = "❌ An error occurred while processing the file:\n`%s`"
	textFileTooBigTmpl = "⚠️ The file is too large (%s). The limit is %s."
	textSessionExpired = "Session expired. Please upload the file again."

	textUnknownText = "Send me an Excel file, or use /help to see what I can do."
	textAdminOnly   = "This command is available to the bot operator only."
	textRateLimited = "Slow down a little, please."
	textUnsupported = "Unsupported action"

	textTip = "_Tip: Tap the numbers above to copy._"
)
