// Command radload is a minimal RADIUS client and server demo exercising the codec end to
// end: it starts a UDP Access-Request/Accounting-Request server backed by the bundled
// default dictionary, fires one request of each kind at itself, and prints the decoded
// replies. Grounded on the teacher's main.go bootstrap shape (flag-parsed, logger-first,
// single-scenario), trimmed of the Diameter peer/listener machinery this module doesn't
// carry.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/InfinitTechnologies/Flexinets.Radius.Core/dictutil"
	"github.com/InfinitTechnologies/Flexinets.Radius.Core/radius"
	"github.com/InfinitTechnologies/Flexinets.Radius.Core/resources"
)

func setupLogger() *zap.SugaredLogger {
	rawJSON := []byte(`{
		"level": "debug",
		"development": true,
		"encoding": "json",
		"outputPaths": ["stdout"],
		"errorOutputPaths": ["stderr"],
		"disableCaller": false,
		"disableStackTrace": false,
		"encoderConfig": {
			"messageKey": "message",
			"levelKey": "level",
			"levelEncoder": "lowercase",
			"callerKey": "caller",
			"callerEncoder": "",
			"timeKey": "ts",
			"timeEncoder": "ISO8601"
			}
		}`)

	var cfg zap.Config
	if err := json.Unmarshal(rawJSON, &cfg); err != nil {
		panic(err)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger.Sugar()
}

func main() {
	addrPtr := flag.String("addr", "127.0.0.1:0", "UDP address to bind the demo server to")
	secretPtr := flag.String("secret", "testing123", "shared secret used for this demo exchange")
	flag.Parse()

	logger := setupLogger()
	radius.SetLogger(logger)

	dict, err := dictutil.LoadFromFS(context.Background(), resources.DictionaryFS, resources.DefaultDictionaryRoot)
	if err != nil {
		logger.Fatalw("could not load dictionary", "error", err)
	}

	conn, err := net.ListenPacket("udp", *addrPtr)
	if err != nil {
		logger.Fatalw("could not bind UDP socket", "error", err)
	}
	defer conn.Close()

	secret := []byte(*secretPtr)
	serverDone := make(chan struct{})
	go serve(conn, dict, secret, logger, serverDone)

	if err := runAccessRequest(conn.LocalAddr().String(), dict, secret, logger); err != nil {
		logger.Errorw("access-request exchange failed", "error", err)
	}
	if err := runAccountingRequest(conn.LocalAddr().String(), dict, secret, logger); err != nil {
		logger.Errorw("accounting-request exchange failed", "error", err)
	}

	conn.Close()
	<-serverDone
	fmt.Println("done.")
}

// serve answers Access-Request with Access-Accept and Accounting-Request with
// Accounting-Response until conn is closed.
func serve(conn net.PacketConn, dict *radius.Dictionary, secret []byte, logger *zap.SugaredLogger, done chan<- struct{}) {
	defer close(done)
	buf := make([]byte, 4096)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			return
		}
		req, err := radius.Parse(dict, secret, buf[:n], nil, nil)
		if err != nil {
			logger.Warnw("dropping unparseable packet", "error", err)
			continue
		}
		logger.Infow("server received request", "code", req.Code.String(), "id", req.Identifier)

		var resp *radius.Packet
		switch req.Code {
		case radius.AccessRequest:
			resp = radius.NewResponse(req, radius.AccessAccept)
			resp.Add("Reply-Message", radius.StringValue("welcome"))
		case radius.AccountingRequest:
			resp = radius.NewResponse(req, radius.AccountingResponse)
		default:
			continue
		}

		out, err := resp.Serialize(dict, nil, nil)
		if err != nil {
			logger.Errorw("could not serialize response", "error", err)
			continue
		}
		if _, err := conn.WriteTo(out, addr); err != nil {
			logger.Errorw("could not send response", "error", err)
		}
	}
}

func runAccessRequest(serverAddr string, dict *radius.Dictionary, secret []byte, logger *zap.SugaredLogger) error {
	req := radius.NewRequest(radius.AccessRequest, 1, secret)
	req.Add("User-Name", radius.StringValue("bob"))
	req.Add("User-Password", radius.StringValue("secretpassword"))
	req.Add("NAS-IP-Address", radius.IPAddrValue(net.ParseIP("192.0.2.1")))
	req.Add("Service-Type", radius.IntegerValue(2))

	out, err := req.Serialize(dict, nil, nil)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	reply, err := exchange(serverAddr, out)
	if err != nil {
		return err
	}
	requestAuth := req.Authenticator
	resp, err := radius.Parse(dict, secret, reply, &requestAuth, nil)
	if err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	logger.Infow("access-request reply", "code", resp.Code.String())
	return nil
}

func runAccountingRequest(serverAddr string, dict *radius.Dictionary, secret []byte, logger *zap.SugaredLogger) error {
	req := radius.NewRequest(radius.AccountingRequest, 2, secret)
	req.Add("User-Name", radius.StringValue("bob"))
	req.Add("Acct-Status-Type", radius.IntegerValue(1))
	req.Add("Acct-Session-Id", radius.StringValue("sess-0001"))

	out, err := req.Serialize(dict, nil, nil)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	reply, err := exchange(serverAddr, out)
	if err != nil {
		return err
	}
	requestAuth := req.Authenticator
	resp, err := radius.Parse(dict, secret, reply, &requestAuth, nil)
	if err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	logger.Infow("accounting-request reply", "code", resp.Code.String())
	return nil
}

func exchange(serverAddr string, out []byte) ([]byte, error) {
	conn, err := net.Dial("udp", serverAddr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Write(out); err != nil {
		return nil, err
	}
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}
