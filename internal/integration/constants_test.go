package integration_test

const (
	TestShowId       = "68395b407f6329be2bb45bd1"
	TestOtherShowId  = "68395b407f6329be2bb45bd2"
	TestTimeId       = "68395b407f6329be2bb45bd1-0724-0100"
	TestOtherTimeId  = "68395b407f6329be2bb45bd1-0724-0300"
	TestUnknownShow  = "000000000000000000000000"
	TestSeatPrice    = "12.50"
	TestCurrency     = "USD"
	TestPaymentPage  = "https://pay.cinex.example/checkout"
	TestWebhookKey   = "whsec_integration"
	TestReceiptEmail = "guest@example.com"
)
