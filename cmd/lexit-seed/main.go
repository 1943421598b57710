package main

import (
	"archive/zip"
	"encoding/xml"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// The generated archive mirrors the bulk publication layout: one zip entry
// per statute at {year}/{year}-{nnnn}.xml.

type statuteXML struct {
	XMLName  xml.Name     `xml:"statute"`
	Number   string       `xml:"id,attr"`
	Date     string       `xml:"date,attr"`
	Type     string       `xml:"type,attr"`
	Title    string       `xml:"title"`
	Sections []sectionXML `xml:"section"`
}

type sectionXML struct {
	Number     string   `xml:"number,attr"`
	Heading    string   `xml:"heading"`
	Paragraphs []string `xml:"paragraph"`
}

var subjects = []string{
	"Data Protection",
	"Public Procurement",
	"Road Traffic",
	"Environmental Liability",
	"Consumer Credit",
	"Maritime Safety",
	"Energy Efficiency",
	"Digital Services",
	"Land Registration",
	"Food Safety",
	"Waste Management",
	"Animal Welfare",
	"Civil Aviation",
	"Insurance Contracts",
	"Postal Services",
	"Water Resources",
	"Public Health",
	"Building Standards",
	"Employment Agencies",
	"Archives and Records",
}

var documentTypes = []string{"act", "regulation", "order"}

var headings = []string{
	"Scope of Application",
	"Definitions",
	"Obligations of the Operator",
	"Registration and Licensing",
	"Supervision and Inspection",
	"Reporting Requirements",
	"Administrative Penalties",
	"Appeals",
	"Exemptions",
	"Transitional Provisions",
	"Entry into Force",
}

var actors = []string{
	"The operator",
	"The supervisory authority",
	"A licence holder",
	"The registrar",
	"Any affected party",
	"The minister",
	"A contracting entity",
	"The importer",
	"The competent inspector",
	"Every registered undertaking",
}

var stipulations = []string{
	"shall maintain records of each transaction",
	"shall submit an annual compliance report",
	"may suspend the licence for up to ninety days",
	"shall publish a notice in the official gazette",
	"must retain supporting documents for six years",
	"may impose an administrative fine",
	"shall notify the register without undue delay",
	"shall provide proof of financial standing on request",
	"may order the withdrawal of non-compliant goods",
	"shall designate a responsible contact person",
	"must verify the identity of each applicant",
	"shall keep the premises open to inspection",
}

var qualifiers = []string{
	"unless a court orders otherwise",
	"within thirty days of the decision",
	"subject to the exemptions in this act",
	"where public safety so requires",
	"on payment of the prescribed fee",
	"in the form the authority prescribes",
	"for the duration of the licence period",
	"",
	"",
}

var (
	outPath  = flag.String("out", "statutes.zip", "output archive path")
	yearList = flag.String("years", "2024", "comma-separated publication years")
	docCount = flag.Int("docs", 20, "documents per year")
	sections = flag.Int("sections", 5, "sections per document")
	seed     = flag.Int64("seed", 1, "random seed; the same seed produces the same archive")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func parseYears(list string) ([]int, error) {
	var years []int
	for _, field := range strings.Split(list, ",") {
		year, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("invalid year %q: %w", field, err)
		}
		years = append(years, year)
	}
	return years, nil
}

func sentence(rng *rand.Rand) string {
	var b strings.Builder
	b.WriteString(actors[rng.Intn(len(actors))])
	b.WriteString(" ")
	b.WriteString(stipulations[rng.Intn(len(stipulations))])
	if q := qualifiers[rng.Intn(len(qualifiers))]; q != "" {
		b.WriteString(", ")
		b.WriteString(q)
	}
	b.WriteString(".")
	return b.String()
}

func paragraph(rng *rand.Rand) string {
	n := 2 + rng.Intn(3)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = sentence(rng)
	}
	return strings.Join(parts, " ")
}

func statute(rng *rand.Rand, year, n, sectionCount int) statuteXML {
	id := fmt.Sprintf("%d-%04d", year, n)
	doc := statuteXML{
		Number: id,
		Date:   fmt.Sprintf("%d-%02d-%02d", year, 1+rng.Intn(12), 1+rng.Intn(28)),
		Type:   documentTypes[rng.Intn(len(documentTypes))],
		Title:  fmt.Sprintf("%s Act (%s)", subjects[rng.Intn(len(subjects))], id),
	}
	for i := 0; i < sectionCount; i++ {
		section := sectionXML{
			Number:  strconv.Itoa(i + 1),
			Heading: headings[i%len(headings)],
		}
		paragraphs := 1 + rng.Intn(3)
		for j := 0; j < paragraphs; j++ {
			section.Paragraphs = append(section.Paragraphs, paragraph(rng))
		}
		doc.Sections = append(doc.Sections, section)
	}
	return doc
}

func writeArchive(path string, years []int, docs, sectionCount int, rng *rand.Rand) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	zw := zip.NewWriter(f)

	total := 0
	for _, year := range years {
		for n := 1; n <= docs; n++ {
			doc := statute(rng, year, n, sectionCount)
			data, err := xml.MarshalIndent(doc, "", "  ")
			if err != nil {
				return total, err
			}

			w, err := zw.Create(fmt.Sprintf("%d/%s.xml", year, doc.Number))
			if err != nil {
				return total, err
			}
			if _, err := w.Write([]byte(xml.Header)); err != nil {
				return total, err
			}
			if _, err := w.Write(data); err != nil {
				return total, err
			}
			total++
		}
	}

	if err := zw.Close(); err != nil {
		return total, err
	}
	return total, f.Close()
}

func main() {
	years, err := parseYears(*yearList)
	if err != nil {
		panic(err)
	}

	rng := rand.New(rand.NewSource(*seed))
	total, err := writeArchive(*outPath, years, *docCount, *sections, rng)
	if err != nil {
		panic(err)
	}

	slog.Info("archive written", "path", *outPath, "years", years, "documents", total)
}
