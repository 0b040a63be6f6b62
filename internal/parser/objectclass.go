package parser

import "fmt"

// Object class acronyms by OBJL code. Lookup only: codes outside the table
// decode normally and display as OBJL_<code>.
// Source: IHO S-57 Edition 3.1 Appendix A - Object Catalogue (31ApAch1.pdf)
var objectClassNames = map[uint16]string{
	1: "ADMARE", 2: "AIRARE", 3: "ACHBRT", 4: "ACHARE", 5: "BCNCAR", 6: "BCNISD",
	7: "BCNLAT", 8: "BCNSAW", 9: "BCNSPP", 10: "BERTHS", 11: "BRIDGE", 12: "BUISGL",
	13: "BUAARE", 14: "BOYCAR", 15: "BOYINB", 16: "BOYISD", 17: "BOYLAT", 18: "BOYSAW",
	19: "BOYSPP", 20: "CBLARE", 21: "CBLOHD", 22: "CBLSUB", 23: "CANALS", 24: "CANBNK",
	25: "CTSARE", 26: "CAUSWY", 27: "CTNARE", 28: "CHKPNT", 29: "CGUSTA", 30: "COALNE",
	31: "CONZNE", 32: "COSARE", 33: "CTRPNT", 34: "CONVYR", 35: "CRANES", 36: "CURENT",
	37: "CUSZNE", 38: "DAMCON", 39: "DAYMAR", 40: "DWRTCL", 41: "DWRTPT", 42: "DEPARE",
	43: "DEPCNT", 44: "DISMAR", 45: "DOCARE", 46: "DRGARE", 47: "DRYDOC", 48: "DMPGRD",
	49: "DYKCON", 50: "EXEZNE", 51: "FAIRWY", 52: "FNCLNE", 53: "FERYRT", 54: "FSHZNE",
	55: "FSHFAC", 56: "FSHGRD", 57: "FLODOC", 58: "FOGSIG", 59: "FORSTC", 60: "FRPARE",
	61: "GATCON", 62: "GRIDRN", 63: "HRBARE", 64: "HRBFAC", 65: "HULKES", 66: "ICEARE",
	67: "ICNARE", 68: "ISTZNE", 69: "LAKARE", 70: "LAKSHR", 71: "LNDARE", 72: "LNDELV",
	73: "LNDRGN", 74: "LNDMRK", 75: "LIGHTS", 76: "LITFLT", 77: "LITVES", 78: "LOCMAG",
	79: "LOKBSN", 80: "LOGPON", 81: "MAGVAR", 82: "MARCUL", 83: "MIPARE", 84: "MORFAC",
	85: "NAVLNE", 86: "OBSTRN", 87: "OFSPLF", 88: "OSPARE", 89: "OILBAR", 90: "PILPNT",
	91: "PILBOP", 92: "PIPARE", 93: "PIPOHD", 94: "PIPSOL", 95: "PONTON", 96: "PRCARE",
	97: "PRDARE", 98: "PYLONS", 99: "RADLNE", 100: "RADRNG", 101: "RADRFL", 102: "RADSTA",
	103: "RTPBCN", 104: "RDOCAL", 105: "RDOSTA", 106: "RAILWY", 107: "RAPIDS", 108: "RCRTCL",
	109: "RECTRC", 110: "RCTLPT", 111: "RSCSTA", 112: "RESARE", 113: "RETRFL", 114: "RIVERS",
	115: "RIVBNK", 116: "ROADWY", 117: "RUNWAY", 118: "SNDWAV", 119: "SEAARE", 120: "SPLARE",
	121: "SBDARE", 122: "SLCONS", 123: "SISTAT", 124: "SISTAW", 125: "SILTNK", 126: "SLOTOP",
	127: "SLOGRD", 128: "SMCFAC", 129: "SOUNDG", 130: "SPRING", 131: "SQUARE", 132: "STSLNE",
	133: "SUBTLN", 134: "SWPARE", 135: "TESARE", 136: "TS_PRH", 137: "TS_PNH", 138: "TS_PAD",
	139: "TS_TIS", 140: "T_HMON", 141: "T_NHMN", 142: "T_TIMS", 143: "TIDEWY", 144: "TOPMAR",
	145: "TSELNE", 146: "TSSBND", 147: "TSSCRS", 148: "TSSLPT", 149: "TSSRON", 150: "TSEZNE",
	151: "TUNNEL", 152: "TWRTPT", 153: "UWTROC", 154: "UNSARE", 155: "VEGATN", 156: "WATTUR",
	157: "WATFAL", 158: "WEDKLP", 159: "WRECKS", 300: "M_ACCY", 301: "M_CSCL", 302: "M_COVR",
	303: "M_HDAT", 304: "M_HOPA", 305: "M_NPUB", 306: "M_NSYS", 307: "M_PROD", 308: "M_QUAL",
	309: "M_SDAT", 310: "M_SREL", 311: "M_UNIT", 312: "M_VDAT", 400: "C_AGGR", 401: "C_ASSO",
	402: "C_STAC",
}

// Acronyms of the attributes most charts carry, by ATTL code.
// Source: IHO S-57 Edition 3.1 Appendix A Chapter 2 - Attribute Catalogue
var attributeNames = map[uint16]string{
	1: "AGENCY", 2: "BCNSHP", 4: "BOYSHP", 37: "CATLIT", 75: "COLOUR", 76: "COLPAT",
	87: "DRVAL1", 88: "DRVAL2", 90: "ELEVAT", 95: "HEIGHT", 113: "NATSUR", 116: "OBJNAM",
	125: "QUASOU", 133: "SCAMIN", 149: "STATUS", 156: "TECSOU", 174: "VALDCO", 179: "VALSOU",
	187: "WATLEV", 300: "NINFOM", 301: "NOBJNM", 401: "POSACC", 402: "QUAPOS",
}

// ObjectClassName converts an OBJL code to its acronym, e.g. 42 -> "DEPARE".
func ObjectClassName(code uint16) string {
	if name, ok := objectClassNames[code]; ok {
		return name
	}
	return fmt.Sprintf("OBJL_%d", code)
}

// AttributeName converts an ATTL code to its acronym, e.g. 116 -> "OBJNAM".
func AttributeName(code uint16) string {
	if name, ok := attributeNames[code]; ok {
		return name
	}
	return fmt.Sprintf("ATTR_%d", code)
}
