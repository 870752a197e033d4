package qrz

// Callsign is the record the provider returns for a callsign lookup.
type Callsign struct {
	Call      string `xml:"call"`
	Xref      string `xml:"xref"`
	Aliases   string `xml:"aliases"`
	Dxcc      string `xml:"dxcc"`
	Fname     string `xml:"fname"`
	Name      string `xml:"name"`
	Addr1     string `xml:"addr1"`
	Addr2     string `xml:"addr2"`
	State     string `xml:"state"`
	Zip       string `xml:"zip"`
	Country   string `xml:"country"`
	Ccode     string `xml:"ccode"`
	Lat       string `xml:"lat"`
	Lon       string `xml:"lon"`
	Grid      string `xml:"grid"`
	County    string `xml:"county"`
	Fips      string `xml:"fips"`
	Land      string `xml:"land"`
	Efdate    string `xml:"efdate"`
	Expdate   string `xml:"expdate"`
	Pcall     string `xml:"p_call"`
	Class     string `xml:"class"`
	Codes     string `xml:"codes"`
	Qslmgr    string `xml:"qslmgr"`
	Email     string `xml:"email"`
	Url       string `xml:"url"`
	UViews    int    `xml:"u_views"`
	Bio       int    `xml:"bio"`
	Biodate   string `xml:"biodate"`
	Image     string `xml:"image"`
	Imageinfo string `xml:"imageinfo"`
	Serial    string `xml:"serial"`
	Moddate   string `xml:"moddate"`
	Msa       string `xml:"MSA"`
	AreaCode  string `xml:"AreaCode"`
	TimeZone  string `xml:"TimeZone"`
	GmtOffset string `xml:"GMTOffset"`
	Dst       string `xml:"DST"`
	Eqsl      string `xml:"eqsl"`
	Mqsl      string `xml:"mqsl"`
	Cqzone    int    `xml:"cqzone"`
	Ituzone   int    `xml:"ituzone"`
	Born      string `xml:"born"`
	User      string `xml:"user"`
	Lotw      string `xml:"lotw"`
	Iota      string `xml:"iota"`
	Geoloc    string `xml:"geoloc"`
	Attn      string `xml:"attn"`
	Nickname  string `xml:"nickname"`
	NameFmt   string `xml:"name_fmt"`
}

// DXCC is the record the provider returns for a DXCC entity lookup.
type DXCC struct {
	Dxcc      string `xml:"dxcc"`
	Cc        string `xml:"cc"`
	Ccc       string `xml:"ccc"`
	Name      string `xml:"name"`
	Continent string `xml:"continent"`
	Ituzone   string `xml:"ituzone"`
	Cqzone    string `xml:"cqzone"`
	Timezone  string `xml:"timezone"`
	Lat       string `xml:"lat"`
	Lon       string `xml:"lon"`
	Notes     string `xml:"notes"`
}
