package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

const (
	relsNS         = "http://schemas.openxmlformats.org/package/2006/relationships"
	officeDocRelNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	xmlHeader      = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`
	pmlNamespaces  = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
)

// escapeXML escapes text for element content and attribute values
func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func pptxContentTypes(slideCount int) string {
	var builder strings.Builder
	builder.WriteString(xmlHeader)
	builder.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	builder.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	builder.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	builder.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	builder.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	builder.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	builder.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&builder, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	builder.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	builder.WriteString(`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`)
	builder.WriteString(`</Types>`)
	return builder.String()
}

func pptxRootRels() string {
	return xmlHeader +
		`<Relationships xmlns="` + relsNS + `">` +
		`<Relationship Id="rId1" Type="` + officeDocRelNS + `/officeDocument" Target="ppt/presentation.xml"/>` +
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
		`<Relationship Id="rId3" Type="` + officeDocRelNS + `/extended-properties" Target="docProps/app.xml"/>` +
		`</Relationships>`
}

func pptxCoreProps(title, author string, created time.Time) string {
	stamp := created.UTC().Format(time.RFC3339)
	return xmlHeader +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + escapeXML(title) + `</dc:title>` +
		`<dc:subject>` + pptxSubject + `</dc:subject>` +
		`<dc:creator>` + escapeXML(author) + `</dc:creator>` +
		`<cp:lastModifiedBy>` + escapeXML(author) + `</cp:lastModifiedBy>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

func pptxAppProps(slideCount int, company string) string {
	var builder strings.Builder
	builder.WriteString(xmlHeader)
	builder.WriteString(`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">`)
	builder.WriteString(`<Application>slidegen</Application>`)
	builder.WriteString(`<PresentationFormat>On-screen Show (16:9)</PresentationFormat>`)
	fmt.Fprintf(&builder, `<Slides>%d</Slides>`, slideCount)
	builder.WriteString(`<Notes>0</Notes><HiddenSlides>0</HiddenSlides>`)
	fmt.Fprintf(&builder, `<Company>%s</Company>`, escapeXML(company))
	builder.WriteString(`</Properties>`)
	return builder.String()
}

// Relationship ids: rId1 master, rId2 theme, rId3.. slides
func pptxPresentation(slideCount int) string {
	var builder strings.Builder
	builder.WriteString(xmlHeader)
	builder.WriteString(`<p:presentation ` + pmlNamespaces + ` saveSubsetFonts="1">`)
	builder.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	builder.WriteString(`<p:sldIdLst>`)
	for i := 0; i < slideCount; i++ {
		fmt.Fprintf(&builder, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, 3+i)
	}
	builder.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&builder, `<p:sldSz cx="%d" cy="%d"/>`, slideCX, slideCY)
	builder.WriteString(`<p:notesSz cx="6858000" cy="9144000"/>`)
	builder.WriteString(`<p:defaultTextStyle/>`)
	builder.WriteString(`</p:presentation>`)
	return builder.String()
}

func pptxPresentationRels(slideCount int) string {
	var builder strings.Builder
	builder.WriteString(xmlHeader)
	builder.WriteString(`<Relationships xmlns="` + relsNS + `">`)
	builder.WriteString(`<Relationship Id="rId1" Type="` + officeDocRelNS + `/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	builder.WriteString(`<Relationship Id="rId2" Type="` + officeDocRelNS + `/theme" Target="theme/theme1.xml"/>`)
	for i := 0; i < slideCount; i++ {
		fmt.Fprintf(&builder, `<Relationship Id="rId%d" Type="`+officeDocRelNS+`/slide" Target="slides/slide%d.xml"/>`, 3+i, i+1)
	}
	builder.WriteString(`</Relationships>`)
	return builder.String()
}

const emptySpTree = `<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree>`

const pptxSlideRels = xmlHeader +
	`<Relationships xmlns="` + relsNS + `">` +
	`<Relationship Id="rId1" Type="` + officeDocRelNS + `/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
	`</Relationships>`

const pptxSlideMaster = xmlHeader +
	`<p:sldMaster ` + pmlNamespaces + `>` +
	`<p:cSld>` + emptySpTree + `</p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
	`</p:sldMaster>`

const pptxSlideMasterRels = xmlHeader +
	`<Relationships xmlns="` + relsNS + `">` +
	`<Relationship Id="rId1" Type="` + officeDocRelNS + `/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
	`<Relationship Id="rId2" Type="` + officeDocRelNS + `/theme" Target="../theme/theme1.xml"/>` +
	`</Relationships>`

const pptxSlideLayout = xmlHeader +
	`<p:sldLayout ` + pmlNamespaces + ` type="blank" preserve="1">` +
	`<p:cSld name="Blank">` + emptySpTree + `</p:cSld>` +
	`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
	`</p:sldLayout>`

const pptxSlideLayoutRels = xmlHeader +
	`<Relationships xmlns="` + relsNS + `">` +
	`<Relationship Id="rId1" Type="` + officeDocRelNS + `/slideMaster" Target="../slideMasters/slideMaster1.xml"/>` +
	`</Relationships>`

const pptxTheme = xmlHeader +
	`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="SlideGen">` +
	`<a:themeElements>` +
	`<a:clrScheme name="SlideGen">` +
	`<a:dk1><a:srgbClr val="1E293B"/></a:dk1><a:lt1><a:srgbClr val="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="334155"/></a:dk2><a:lt2><a:srgbClr val="F1F5F9"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="3B82F6"/></a:accent1><a:accent2><a:srgbClr val="2563EB"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="1E293B"/></a:accent3><a:accent4><a:srgbClr val="64748B"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="94A3B8"/></a:accent5><a:accent6><a:srgbClr val="F8FAFC"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="2563EB"/></a:hlink><a:folHlink><a:srgbClr val="1E40AF"/></a:folHlink>` +
	`</a:clrScheme>` +
	`<a:fontScheme name="SlideGen">` +
	`<a:majorFont><a:latin typeface="Calibri Light"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
	`</a:fontScheme>` +
	`<a:fmtScheme name="SlideGen">` +
	`<a:fillStyleLst>` + themeFill + themeFill + themeFill + `</a:fillStyleLst>` +
	`<a:lnStyleLst>` + themeLine + themeLine + themeLine + `</a:lnStyleLst>` +
	`<a:effectStyleLst>` + themeEffect + themeEffect + themeEffect + `</a:effectStyleLst>` +
	`<a:bgFillStyleLst>` + themeFill + themeFill + themeFill + `</a:bgFillStyleLst>` +
	`</a:fmtScheme>` +
	`</a:themeElements>` +
	`</a:theme>`

const (
	themeFill   = `<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`
	themeLine   = `<a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>`
	themeEffect = `<a:effectStyle><a:effectLst/></a:effectStyle>`
)
