package mpform_test

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tomasbasham/mpform"
)

func ExampleMultipartEncoder_Encode() {
	var tree mpform.Tree
	tree.AddString("name", "bob")
	tree.AddTree("address", mpform.Tree{
		{Key: "city", Value: mpform.String("Anytown")},
	})
	tree.Add("avatar", mpform.NamedFile(strings.NewReader("PNGDATA"), "pic.png"))

	enc, err := mpform.NewMultipartEncoder(mpform.WithBoundary("example"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	out, err := enc.Encode(tree)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	defer out.Close()

	body, _ := io.ReadAll(out)
	fmt.Println(out.ContentType())
	fmt.Print(strings.ReplaceAll(string(body), "\r\n", "\n"))
	// Output:
	// multipart/form-data; boundary=example
	// --example
	// Content-Disposition: form-data; name="name"
	//
	// bob
	// --example
	// Content-Disposition: form-data; name="address[city]"
	//
	// Anytown
	// --example
	// Content-Disposition: form-data; name="avatar"; filename="pic.png"
	// Content-Type: application/octet-stream
	// Content-Transfer-Encoding: binary
	//
	// PNGDATA
	// --example--
}

func ExampleMarshal() {
	user := User{
		Name: "Jane Doe",
		Age:  28,
		Address: Address{
			Street: "456 Oak St",
			City:   "Othertown",
		},
	}

	tree, err := mpform.Marshal(user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	body, _, err := mpform.EncodeToBytes(tree, mpform.WithBoundary("example"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	for _, line := range strings.Split(string(body), "\r\n") {
		if strings.HasPrefix(line, "Content-Disposition") {
			fmt.Println(line)
		}
	}
	// Output:
	// Content-Disposition: form-data; name="name"
	// Content-Disposition: form-data; name="age"
	// Content-Disposition: form-data; name="address[street]"
	// Content-Disposition: form-data; name="address[city]"
	// Content-Disposition: form-data; name="address[state]"
	// Content-Disposition: form-data; name="address[zip]"
}
