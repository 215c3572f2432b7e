package compose

// RGB is a renderer-agnostic color.
type RGB struct {
	R, G, B int
}

// Palette is the anthracite scheme the shop's documents use.
type Palette struct {
	Primary     RGB // header band, emphasis
	Dark        RGB // body text
	Gray        RGB // secondary text
	LightGray   RGB // shaded rows, boxed sections
	Border      RGB
	White       RGB
	Success     RGB // discount values, payment accent
	NotesBg     RGB // highlighted notes background
	NotesAccent RGB
	NotesTitle  RGB
}

// TextStyle is a named, reusable text style. Blocks reference styles by
// role so the PDF and HTML backends stay interchangeable.
type TextStyle struct {
	Size   float64
	Bold   bool
	Italic bool
	Color  RGB
}

// Stylesheet bundles every named style used by the composed documents.
type Stylesheet struct {
	Colors Palette

	CompanyName  TextStyle
	Tagline      TextStyle
	DocTitle     TextStyle
	DocNumber    TextStyle
	SenderLine   TextStyle
	SectionLabel TextStyle
	AddressName  TextStyle
	Body         TextStyle
	TableHeader  TextStyle
	TableCell    TextStyle
	TotalsLabel  TextStyle
	GrandLabel   TextStyle
	GrandValue   TextStyle
	PaymentIBAN  TextStyle
	PaymentNote  TextStyle
	NotesTitle   TextStyle
	FooterTitle  TextStyle
	FooterText   TextStyle
}

// DefaultStyles returns the fixed stylesheet of the printed documents.
func DefaultStyles() Stylesheet {
	colors := Palette{
		Primary:     RGB{55, 65, 81},
		Dark:        RGB{17, 24, 39},
		Gray:        RGB{107, 114, 128},
		LightGray:   RGB{243, 244, 246},
		Border:      RGB{229, 231, 235},
		White:       RGB{255, 255, 255},
		Success:     RGB{5, 150, 105},
		NotesBg:     RGB{255, 251, 235},
		NotesAccent: RGB{245, 158, 11},
		NotesTitle:  RGB{146, 64, 14},
	}
	return Stylesheet{
		Colors:       colors,
		CompanyName:  TextStyle{Size: 20, Bold: true, Color: colors.White},
		Tagline:      TextStyle{Size: 9, Color: colors.White},
		DocTitle:     TextStyle{Size: 24, Bold: true, Color: colors.White},
		DocNumber:    TextStyle{Size: 11, Color: colors.White},
		SenderLine:   TextStyle{Size: 7, Color: colors.Gray},
		SectionLabel: TextStyle{Size: 7, Color: colors.Gray},
		AddressName:  TextStyle{Size: 11, Bold: true, Color: colors.Dark},
		Body:         TextStyle{Size: 9, Color: colors.Dark},
		TableHeader:  TextStyle{Size: 8, Bold: true, Color: colors.White},
		TableCell:    TextStyle{Size: 9, Color: colors.Dark},
		TotalsLabel:  TextStyle{Size: 9, Color: colors.Gray},
		GrandLabel:   TextStyle{Size: 12, Bold: true, Color: colors.Dark},
		GrandValue:   TextStyle{Size: 14, Bold: true, Color: colors.Primary},
		PaymentIBAN:  TextStyle{Size: 11, Bold: true, Color: colors.Dark},
		PaymentNote:  TextStyle{Size: 8, Italic: true, Color: colors.Gray},
		NotesTitle:   TextStyle{Size: 8, Bold: true, Color: colors.NotesTitle},
		FooterTitle:  TextStyle{Size: 7, Bold: true, Color: colors.Primary},
		FooterText:   TextStyle{Size: 7, Color: colors.Gray},
	}
}
