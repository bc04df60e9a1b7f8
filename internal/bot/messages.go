package bot

const (
	msgGreeting   = "أهلاً بك في بوت (صياد العروض)! أرسل لي أي صورة لوضع الحقوق عليها.\nاستخدم /color لاختيار لون الحقوق."
	msgReceived   = "تم استلام الصورة، جاري إضافة الحقوق..."
	msgDone       = "تم وضع الحقوق بنجاح!"
	msgFailed     = "عذرًا، حدث خطأ أثناء معالجة الصورة."
	msgPickColor  = "اختر لون الحقوق:"
	msgColorSaved = "تم اختيار اللون: "
	msgUnknown    = "أرسل صورة لوضع الحقوق عليها، أو /color لاختيار اللون."
)
