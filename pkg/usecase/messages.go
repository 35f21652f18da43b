package usecase

// Messages shown to users. They are part of the user interface contract.
const (
	MsgLoadLogsFailed    = "Failed to load logs. Please try again."
	MsgDeleteLogConfirm  = "Are you sure you want to delete this construction log? This action cannot be undone."
	MsgDeleteLogFailed   = "Failed to delete log. Please try again."
	MsgLoadDetailFailed  = "Failed to load log details. Please try again."
	MsgLogNotFound       = "Log not found"
	MsgActionInProgress  = "This action is already in progress. Please wait."
	MsgDeleteFileConfirm = "Are you sure you want to delete this attachment? This action cannot be undone."
	MsgDeleteFileFailed  = "Failed to delete attachment. Please try again."

	MsgTitleRequired       = "Please enter a title for the log."
	MsgInvalidField        = "Please check the highlighted fields and try again."
	MsgSaveLogFailed       = "Failed to save log. Please try again."
	MsgLoadFormFailed      = "Failed to load log data. Please try again."
	MsgDescriptionRequired = "Please enter a description first."
	MsgSummaryFailed       = "Failed to generate AI summary. Please try again."

	MsgUploadFailed = "Failed to upload file"
	UploadHint      = "PNG, JPG, GIF, PDF, DOC, XLS, TXT up to 10MB"
	UploadAccept    = "image/*,.pdf,.doc,.docx,.xls,.xlsx,.txt,.csv"

	MsgLoadReportsFailed    = "Failed to load report types"
	MsgSelectReportType     = "Please select a report type."
	MsgSelectDateRange      = "Please select both a start and an end date."
	MsgUnknownReportType    = "The selected report type is no longer available."
	MsgGenerateReportFailed = "Failed to generate report. Please try again."
	MsgNoReportToSave       = "Generate a report before saving it."
	MsgSaveReportFailed     = "Failed to save report. Please try again."
	MsgReportSaved          = "Report saved successfully!"
	MsgDeleteReportFailed   = "Failed to delete report. Please try again."
	MsgSavedReportMissing   = "That saved report no longer exists."
	MsgEmptyReportHint      = "Try selecting a different date range or report type."

	MsgLoadSettingsFailed = "Failed to load settings. Showing defaults."
	MsgSaveSettingsFailed = "Failed to save settings. Please try again."
	MsgSettingsSaved      = "Settings saved."
	MsgSettingsReset      = "Settings restored to defaults."
)
