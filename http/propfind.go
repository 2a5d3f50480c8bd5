package http

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/sagarc03/drivedav"
)

// propfindXML is the request body. Its content is validated but otherwise
// ignored: every response carries the full property set.
type propfindXML struct {
	XMLName  xml.Name  `xml:"DAV: propfind"`
	Allprop  *struct{} `xml:"DAV: allprop"`
	Propname *struct{} `xml:"DAV: propname"`
}

type multistatusXML struct {
	XMLName   xml.Name      `xml:"D:multistatus"`
	XmlnsD    string        `xml:"xmlns:D,attr"`
	Responses []responseXML `xml:"D:response"`
}

type responseXML struct {
	Href     string      `xml:"D:href"`
	Propstat propstatXML `xml:"D:propstat"`
}

type propstatXML struct {
	Prop   propXML `xml:"D:prop"`
	Status string  `xml:"D:status"`
}

type propXML struct {
	DisplayName   string          `xml:"D:displayname"`
	ResourceType  resourceTypeXML `xml:"D:resourcetype"`
	ContentLength *int64          `xml:"D:getcontentlength,omitempty"`
	ContentType   string          `xml:"D:getcontenttype,omitempty"`
	LastModified  string          `xml:"D:getlastmodified,omitempty"`
}

type resourceTypeXML struct {
	Collection *struct{} `xml:"D:collection,omitempty"`
}

// readPropfind checks that a PROPFIND body, if any, is well-formed XML.
func readPropfind(body io.Reader) error {
	if body == nil || body == http.NoBody {
		return nil
	}

	var pf propfindXML
	err := xml.NewDecoder(body).Decode(&pf)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: malformed propfind body: %w", drivedav.ErrBadRequest, err)
}

// href renders the client-visible URL path of p, relative to scope.
func href(scope string, info drivedav.Info) string {
	p := drivedav.UnscopePath(scope, info.Path)
	if p == "" {
		return "/"
	}

	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	out := "/" + strings.Join(segs, "/")
	if info.IsCollection() {
		out += "/"
	}
	return out
}

func entryXML(scope string, info drivedav.Info) responseXML {
	prop := propXML{DisplayName: drivedav.BaseName(drivedav.UnscopePath(scope, info.Path))}
	if info.IsCollection() {
		prop.ResourceType.Collection = &struct{}{}
	} else {
		size := info.Size
		prop.ContentLength = &size
		prop.ContentType = mime.TypeByExtension(path.Ext(info.Path))
		if prop.ContentType == "" {
			prop.ContentType = "application/octet-stream"
		}
	}
	if !info.ModTime.IsZero() {
		prop.LastModified = info.ModTime.UTC().Format(http.TimeFormat)
	}

	return responseXML{
		Href: href(scope, info),
		Propstat: propstatXML{
			Prop:   prop,
			Status: "HTTP/1.1 200 OK",
		},
	}
}

// writeMultistatus renders entries as a 207 Multi-Status response.
func writeMultistatus(w http.ResponseWriter, scope string, entries []drivedav.Info) error {
	ms := multistatusXML{
		XmlnsD:    "DAV:",
		Responses: make([]responseXML, 0, len(entries)),
	}
	for _, e := range entries {
		ms.Responses = append(ms.Responses, entryXML(scope, e))
	}

	out, err := xml.Marshal(ms)
	if err != nil {
		HandleError(w, err)
		return err
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusMultiStatus)
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
