package ocr

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// Options configures a Tesseract recognizer.
type Options struct {
	// Language is the Tesseract language code, e.g. "eng".
	Language string `toml:"language" json:"language"`

	// TessdataPrefix is the directory holding the traineddata files. Empty
	// uses the Tesseract default.
	TessdataPrefix string `toml:"tessdata_prefix" json:"tessdata_prefix"`

	// Whitelist restricts the characters Tesseract may return. Empty allows
	// every character; the result is still checked by AcceptText.
	Whitelist string `toml:"whitelist" json:"whitelist"`
}

// DefaultOptions returns English recognition without a whitelist.
func DefaultOptions() Options {
	return Options{Language: DefaultLanguage}
}

// dictionaryConfig disables every Tesseract dictionary so digit runs are not
// corrected into words. These variables are only read at initialization and
// must be supplied through a config file.
const dictionaryConfig = `load_system_dawg F
load_freq_dawg F
load_punc_dawg F
load_number_dawg F
load_unambig_dawg F
load_bigram_dawg F
load_fixed_length_dawgs F
`
